package pipeline

import "testing"

func TestAnalyze_Metadata(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		length    int
		wordCount int
		hasURLs   bool
	}{
		{"single word", "hello", 5, 1, false},
		{"sentence", "I love sunny days!", 18, 4, false},
		{"extra whitespace", "  spaced   out  words  ", 23, 3, false},
		{"newlines and tabs", "one\ttwo\nthree", 13, 3, false},
		{"http url", "see http://example.com now", 26, 3, true},
		{"https url", "visit https://scam-site.example/free-money today", 48, 3, true},
		{"url-ish but not url", "the ratio is 3.14 approx", 24, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Analyze(State{Content: tt.content})

			if got := state.Metadata[MetaContentLength]; got != tt.length {
				t.Errorf("content_length = %v, want %d", got, tt.length)
			}
			if got := state.Metadata[MetaWordCount]; got != tt.wordCount {
				t.Errorf("word_count = %v, want %d", got, tt.wordCount)
			}
			if got := state.Metadata[MetaHasURLs]; got != tt.hasURLs {
				t.Errorf("has_urls = %v, want %v", got, tt.hasURLs)
			}
			if _, ok := state.Metadata[MetaError]; ok {
				t.Errorf("unexpected error entry in metadata: %v", state.Metadata[MetaError])
			}
		})
	}
}

func TestAnalyze_BlankContent(t *testing.T) {
	// Whitespace-only input must behave identically to the empty string.
	for _, content := range []string{"", "   ", "\t\n ", "\n\n"} {
		state := Analyze(State{Content: content})

		if got := state.Metadata[MetaError]; got != ErrEmptyContent {
			t.Errorf("Analyze(%q) metadata.error = %v, want %q", content, got, ErrEmptyContent)
		}
		if len(state.Metadata) != 1 {
			t.Errorf("Analyze(%q) metadata has %d entries, want only the error entry", content, len(state.Metadata))
		}
	}
}

func TestAnalyze_MergesExistingMetadata(t *testing.T) {
	state := State{
		Content:  "hello world",
		Metadata: map[string]any{"origin": "gateway"},
	}
	state = Analyze(state)

	if got := state.Metadata["origin"]; got != "gateway" {
		t.Errorf("existing metadata entry lost: origin = %v", got)
	}
	if got := state.Metadata[MetaWordCount]; got != 2 {
		t.Errorf("word_count = %v, want 2", got)
	}
}

func TestAnalyze_BlankReplacesMetadata(t *testing.T) {
	// The blank short-circuit replaces the map wholesale rather than merging.
	state := State{
		Content:  "   ",
		Metadata: map[string]any{"origin": "gateway"},
	}
	state = Analyze(state)

	if _, ok := state.Metadata["origin"]; ok {
		t.Error("blank short-circuit should drop prior metadata")
	}
	if got := state.Metadata[MetaError]; got != ErrEmptyContent {
		t.Errorf("metadata.error = %v, want %q", got, ErrEmptyContent)
	}
}
