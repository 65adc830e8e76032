package pipeline

import (
	"strings"
	"testing"
)

func TestResolvers_ComposeExplanation(t *testing.T) {
	const rationale = "model rationale goes here"

	tests := []struct {
		name     string
		resolve  func(State) State
		action   Action
		preamble string
	}{
		{"approve", Approve, ActionApprove, "Your content has been approved"},
		{"flag", Flag, ActionFlag, "Your content was classified as questionable"},
		{"reject", Reject, ActionReject, "Your content was classified as inappropriate"},
		{"escalate", Escalate, ActionEscalate, "Your content was classified as harmful"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.resolve(State{Severity: SeveritySafe, Explanation: rationale})

			if out.Action != tt.action {
				t.Errorf("action = %q, want %q", out.Action, tt.action)
			}
			if !strings.HasPrefix(out.Explanation, tt.preamble) {
				t.Errorf("explanation %q does not begin with %q", out.Explanation, tt.preamble)
			}
			if !strings.Contains(out.Explanation, rationale) {
				t.Errorf("explanation %q does not embed the rationale", out.Explanation)
			}
			if out.Explanation == "" {
				t.Error("explanation is empty after resolving")
			}
		})
	}
}

func TestResolvers_Idempotent(t *testing.T) {
	in := State{Severity: SeverityHarmful, Explanation: "contains a direct threat"}

	first := Escalate(in)
	second := Escalate(in)

	if first.Action != second.Action || first.Explanation != second.Explanation {
		t.Errorf("Escalate is not idempotent over the same input:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestResolvers_AbsentRationale(t *testing.T) {
	// A missing rationale embeds as empty rather than failing.
	out := Flag(State{Severity: SeverityQuestionable})
	if out.Action != ActionFlag {
		t.Errorf("action = %q, want %q", out.Action, ActionFlag)
	}
	if out.Explanation == "" {
		t.Error("explanation should carry the preamble even without a rationale")
	}
}
