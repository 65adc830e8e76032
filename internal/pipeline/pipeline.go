package pipeline

import (
	"context"
	"fmt"
)

// blankRationale is the fixed rationale used when blank input bypasses the
// classifier. The run still terminates with every field set so callers
// always receive a complete state alongside metadata.error.
const blankRationale = "Content is empty; nothing to moderate."

// Pipeline executes the moderation workflow for a single content string:
//
//	Analyze -> Classify -> Route -> one of {Approve, Flag, Reject, Escalate}
//
// A Pipeline holds no per-run state and is safe for concurrent use; each
// Run threads a fresh State through the stages exactly once.
type Pipeline struct {
	classifier Classifier
}

// New creates a Pipeline delegating severity classification to the given
// backend.
func New(classifier Classifier) *Pipeline {
	return &Pipeline{classifier: classifier}
}

// Run moderates one content string end to end and returns the terminal
// state. Blank input skips the classifier call entirely: the run completes
// with metadata.error set and a fixed safe verdict rather than spending a
// classification call on nothing. A classifier failure or an
// out-of-contract label aborts the run with an error wrapping
// ErrClassification; no action or severity is reported in that case.
func (p *Pipeline) Run(ctx context.Context, content string) (State, error) {
	state := Analyze(State{Content: content})

	if _, blank := state.Metadata[MetaError]; blank {
		state.Severity = SeveritySafe
		state.Explanation = blankRationale
	} else {
		result, err := p.classifier.Classify(ctx, state.Content, MetadataSummary(state.Metadata))
		if err != nil {
			return State{}, fmt.Errorf("%w: %v", ErrClassification, err)
		}
		if !result.Severity.Valid() {
			return State{}, fmt.Errorf("%w: severity %q outside contract", ErrClassification, result.Severity)
		}
		state.Severity = result.Severity
		state.Explanation = result.Explanation
	}

	return resolvers[Route(state.Severity)](state), nil
}
