package engine

import (
	"errors"
	"fmt"
)

// ErrNotConfigured reports that a required collaborator (document store,
// generator) was never wired in. This is fatal for the request and indicates
// a broken composition root, not a transient condition.
var ErrNotConfigured = errors.New("engine: required collaborator not configured")

// GenerationError wraps a failed or timed-out call to the LLM backend. The
// engine never fabricates a response when generation fails; callers decide
// what the user sees.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("engine: generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
