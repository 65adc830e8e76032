package messaging

// CheckRequest is published to moderation.check by the gateway when a
// client submits content for review.
type CheckRequest struct {
	SessionID    string `json:"session_id"`
	SubmissionID string `json:"submission_id"`
	Content      string `json:"content"`
	Ts           int64  `json:"ts"`
}

// CheckResult is published to moderation.result.<session_id> with the full
// pipeline verdict, or with Error set when classification failed.
type CheckResult struct {
	SessionID    string         `json:"session_id"`
	SubmissionID string         `json:"submission_id"`
	Severity     string         `json:"severity,omitempty"`
	Action       string         `json:"action,omitempty"`
	Explanation  string         `json:"explanation,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Error        string         `json:"error,omitempty"`
}
