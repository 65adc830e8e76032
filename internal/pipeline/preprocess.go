package pipeline

import "strings"

// Analyze derives structural metadata from the raw content: byte length,
// whitespace-delimited word count, and whether the text contains an
// http:// or https:// substring.
//
// Blank input (empty or whitespace-only) short-circuits: the metadata map
// is replaced with a single error entry and no other facts are computed.
// For non-blank input the facts are merged into any existing metadata.
// Analyze never fails; absent structure yields zero values, not errors.
func Analyze(state State) State {
	if strings.TrimSpace(state.Content) == "" {
		state.Metadata = map[string]any{MetaError: ErrEmptyContent}
		return state
	}

	if state.Metadata == nil {
		state.Metadata = make(map[string]any, 3)
	}
	state.Metadata[MetaContentLength] = len(state.Content)
	state.Metadata[MetaWordCount] = len(strings.Fields(state.Content))
	state.Metadata[MetaHasURLs] = strings.Contains(state.Content, "http://") ||
		strings.Contains(state.Content, "https://")

	return state
}
