package pipeline

// Action resolvers. Each one sets the action tag and replaces the
// explanation with the final user-facing message, embedding the classifier
// rationale verbatim. Resolvers are pure functions of their input state:
// they never consult metadata, never fail, and tolerate an absent
// rationale by embedding an empty string.

// Approve finalizes a safe verdict.
func Approve(state State) State {
	state.Action = ActionApprove
	state.Explanation = "Your content has been approved and is safe to publish. No changes needed." +
		"\n\nAnalysis: " + state.Explanation
	return state
}

// Flag finalizes a questionable verdict.
func Flag(state State) State {
	state.Action = ActionFlag
	state.Explanation = "Your content was classified as questionable." +
		"\n\nReason: " + state.Explanation +
		"\n\nPlease review and revise your content to make it more appropriate before resubmitting."
	return state
}

// Reject finalizes an inappropriate verdict.
func Reject(state State) State {
	state.Action = ActionReject
	state.Explanation = "Your content was classified as inappropriate." +
		"\n\nReason: " + state.Explanation +
		"\n\nIt contains content that violates our guidelines and cannot be published. " +
		"Please revise your content before resubmitting."
	return state
}

// Escalate finalizes a harmful verdict.
func Escalate(state State) State {
	state.Action = ActionEscalate
	state.Explanation = "Your content was classified as harmful." +
		"\n\nReason: " + state.Explanation +
		"\n\nThis content contains material that is dangerous, illegal, or severely violates " +
		"our guidelines. This submission has been escalated for review. " +
		"If you believe this is an error, please contact support."
	return state
}

// resolvers selects the resolver for each action. Exactly one entry runs
// per pipeline invocation.
var resolvers = map[Action]func(State) State{
	ActionApprove:  Approve,
	ActionFlag:     Flag,
	ActionReject:   Reject,
	ActionEscalate: Escalate,
}
