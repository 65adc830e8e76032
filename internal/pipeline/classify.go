package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrClassification marks a failed call to the external classification
// capability: unreachable backend, timeout, or a response outside the
// four-label contract. Callers can test for it with errors.Is.
var ErrClassification = errors.New("classification failed")

// Classification is the structured verdict returned by a Classifier
// backend: exactly one of the four severity labels plus a free-text
// rationale.
type Classification struct {
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

// Classifier is the external text-classification capability the pipeline
// delegates to. Implementations receive the raw content and a rendered
// metadata summary and must return one of the four severity labels with a
// rationale, or an error. The pipeline performs no retries; backends are
// expected to honor ctx for timeouts and cancellation.
type Classifier interface {
	Classify(ctx context.Context, content, metadataSummary string) (Classification, error)
}

// MetadataSummary renders accumulated metadata as a flat human-readable
// listing for the classifier prompt, one "- key: value" line per entry in
// sorted key order. An empty map renders as the literal marker
// "No metadata available".
func MetadataSummary(metadata map[string]any) string {
	if len(metadata) == 0 {
		return "No metadata available"
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %v", k, metadata[k])
	}
	return b.String()
}
