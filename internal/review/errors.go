package review

import (
	"errors"
	"fmt"
)

// Phase names the pipeline stage a fatal error came from.
type Phase string

const (
	PhaseEnsemble   Phase = "ensemble"
	PhaseSingle     Phase = "single"
	PhaseReflection Phase = "reflection"
)

// ErrNoStructuredBlock is the cause carried by an ExtractionError when the
// text holds no fenced JSON block at all.
var ErrNoStructuredBlock = errors.New("no structured block")

// ExtractionError reports raw model output that did not contain a usable
// structured record.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract review: %s: %v", e.Reason, e.Err)
	}
	return "extract review: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmptyEnsembleError means no ensemble member produced a parseable record.
type EmptyEnsembleError struct {
	Requested int
	Cause     error
}

func (e *EmptyEnsembleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("none of %d ensemble reviews could be parsed: %v", e.Requested, e.Cause)
	}
	return fmt.Sprintf("none of %d ensemble reviews could be parsed", e.Requested)
}

func (e *EmptyEnsembleError) Unwrap() error {
	return e.Cause
}

// MetaReviewError is returned by the synthesizer. The orchestrator recovers
// from it by falling back to the first ensemble record.
type MetaReviewError struct {
	Err error
}

func (e *MetaReviewError) Error() string {
	return fmt.Sprintf("meta-review failed: %v", e.Err)
}

func (e *MetaReviewError) Unwrap() error {
	return e.Err
}

// PhaseError wraps a fatal pipeline error with the phase that produced it.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("review %s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func phaseError(phase Phase, err error) error {
	return &PhaseError{Phase: phase, Err: err}
}

// FailedPhase returns the phase recorded on err, if any.
func FailedPhase(err error) (Phase, bool) {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase, true
	}
	return "", false
}
