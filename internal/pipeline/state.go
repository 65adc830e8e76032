// Package pipeline implements the content moderation workflow: a fixed
// directed sequence that analyzes raw text, obtains a severity
// classification from an injected Classifier, routes the severity to a
// moderation action, and composes the final user-facing explanation.
package pipeline

// Severity is the categorical label describing how strongly a piece of
// content violates moderation guidelines.
type Severity string

const (
	SeveritySafe          Severity = "safe"
	SeverityQuestionable  Severity = "questionable"
	SeverityInappropriate Severity = "inappropriate"
	SeverityHarmful       Severity = "harmful"
)

// Valid reports whether s is one of the four labels in the classification
// contract.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySafe, SeverityQuestionable, SeverityInappropriate, SeverityHarmful:
		return true
	}
	return false
}

// ParseSeverity converts a raw label into a Severity, reporting whether the
// label is part of the contract.
func ParseSeverity(label string) (Severity, bool) {
	s := Severity(label)
	return s, s.Valid()
}

// Action is the moderation disposition mapped one-to-one from a severity.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionFlag     Action = "flag"
	ActionReject   Action = "reject"
	ActionEscalate Action = "escalate"
)

// Metadata keys written by Analyze.
const (
	MetaContentLength = "content_length"
	MetaWordCount     = "word_count"
	MetaHasURLs       = "has_urls"
	MetaError         = "error"
)

// ErrEmptyContent is the metadata error value recorded for blank input.
const ErrEmptyContent = "Content is empty"

// State is the record threaded through one moderation run. Content is set
// once at entry and never modified; the remaining fields are filled in by
// the stages in order: Metadata by Analyze, Severity and the raw rationale
// in Explanation by the classifier stage, and Action plus the final
// composed Explanation by the selected resolver.
type State struct {
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
	Severity    Severity       `json:"severity"`
	Action      Action         `json:"action"`
	Explanation string         `json:"explanation"`
}
