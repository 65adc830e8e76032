package classifier

import (
	"context"
	"testing"

	"github.com/whisper/sentinel/internal/pipeline"
)

func TestRules_Severities(t *testing.T) {
	r := NewRules()

	tests := []struct {
		name     string
		input    string
		severity pipeline.Severity
	}{
		{"clean message", "what a lovely afternoon", pipeline.SeveritySafe},
		{"mild profanity", "damn that took forever", pipeline.SeverityQuestionable},
		{"mild profanity cased", "DAMN that took forever", pipeline.SeverityQuestionable},
		{"insult", "you are such an idiot", pipeline.SeverityInappropriate},
		{"insult with punctuation", "idiot!", pipeline.SeverityInappropriate},
		{"harmful phrase", "just go die already", pipeline.SeverityHarmful},
		{"harmful single token", "kys", pipeline.SeverityHarmful},
		{"url spam", "visit https://spam.xyz/click now", pipeline.SeverityInappropriate},
		{"bare domain spam", "go to evil.com/free", pipeline.SeverityInappropriate},
		{"phone spam", "call me at 555-123-4567 okay", pipeline.SeverityInappropriate},
		{"char flood", "hellooooooo there", pipeline.SeverityQuestionable},
		{"word flood", "buy buy buy this", pipeline.SeverityQuestionable},
		{"substring not matched", "the idiotic plan failed", pipeline.SeveritySafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := r.Classify(context.Background(), tt.input, "")
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.input, err)
			}
			if verdict.Severity != tt.severity {
				t.Errorf("Classify(%q).Severity = %q, want %q", tt.input, verdict.Severity, tt.severity)
			}
			if verdict.Explanation == "" {
				t.Errorf("Classify(%q) returned an empty rationale", tt.input)
			}
		})
	}
}

func TestRules_StrictestWins(t *testing.T) {
	r := NewRules()

	// Carries a questionable term, an inappropriate term, and a harmful
	// phrase; the harmful tier must win.
	verdict, err := r.Classify(context.Background(), "damn you idiot, go die", "")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if verdict.Severity != pipeline.SeverityHarmful {
		t.Errorf("severity = %q, want %q", verdict.Severity, pipeline.SeverityHarmful)
	}
}

func TestRules_CustomTerms(t *testing.T) {
	r := NewRulesWithTerms([]string{"forbidden"}, nil, nil)

	verdict, _ := r.Classify(context.Background(), "this is Forbidden knowledge", "")
	if verdict.Severity != pipeline.SeverityHarmful {
		t.Errorf("severity = %q, want %q", verdict.Severity, pipeline.SeverityHarmful)
	}

	verdict, _ = r.Classify(context.Background(), "you are such an idiot", "")
	if verdict.Severity != pipeline.SeveritySafe {
		t.Errorf("default terms leaked into custom backend: severity = %q", verdict.Severity)
	}
}
