package pipeline

import "log"

// Route maps a severity to its moderation action. The mapping is total:
// the four contract labels map bijectively to the four actions, and any
// value outside the contract falls through to escalate (fail closed).
// The fallback is logged because reaching it means the classification
// contract was broken upstream.
func Route(severity Severity) Action {
	switch severity {
	case SeveritySafe:
		return ActionApprove
	case SeverityQuestionable:
		return ActionFlag
	case SeverityInappropriate:
		return ActionReject
	case SeverityHarmful:
		return ActionEscalate
	default:
		log.Printf("[pipeline] unroutable severity %q, escalating", severity)
		return ActionEscalate
	}
}
