package pipeline

import "testing"

func TestRoute_Exhaustive(t *testing.T) {
	tests := []struct {
		severity Severity
		action   Action
	}{
		{SeveritySafe, ActionApprove},
		{SeverityQuestionable, ActionFlag},
		{SeverityInappropriate, ActionReject},
		{SeverityHarmful, ActionEscalate},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := Route(tt.severity); got != tt.action {
				t.Errorf("Route(%q) = %q, want %q", tt.severity, got, tt.action)
			}
		})
	}
}

func TestRoute_FallbackEscalates(t *testing.T) {
	// Out-of-contract values fail closed.
	for _, severity := range []Severity{"", "unknown", "SAFE", "borderline"} {
		if got := Route(severity); got != ActionEscalate {
			t.Errorf("Route(%q) = %q, want %q", severity, got, ActionEscalate)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		label string
		ok    bool
	}{
		{"safe", true},
		{"questionable", true},
		{"inappropriate", true},
		{"harmful", true},
		{"Safe", false},
		{"moderate", false},
		{"", false},
	}

	for _, tt := range tests {
		if _, ok := ParseSeverity(tt.label); ok != tt.ok {
			t.Errorf("ParseSeverity(%q) ok = %v, want %v", tt.label, ok, tt.ok)
		}
	}
}
