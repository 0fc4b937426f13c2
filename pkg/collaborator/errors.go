package collaborator

import (
	"errors"
	"fmt"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

// Operation names.
const (
	OpExtract = "extract"
	OpNarrate = "narrate"
)

// Failure reasons beyond the provider error kinds.
const (
	ReasonMalformed = "malformed"
	ReasonEmpty     = "empty"
	ReasonPanic     = "panic"
)

var (
	// ErrEmptyResponse is returned when the model answers with no content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedResponse is returned when the model output is not the
	// expected JSON object.
	ErrMalformedResponse = errors.New("malformed response")
)

// Failure records a collaborator call that was recovered by the fallback.
// It never reaches the user.
type Failure struct {
	// Op is the failed operation (extract or narrate).
	Op string

	// Backend is the collaborator name.
	Backend string

	// Reason classifies the failure (timeout, auth, malformed, ...).
	Reason string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Failure) Error() string {
	return fmt.Sprintf("collaborator %s %s failed (%s): %v", e.Backend, e.Op, e.Reason, e.Cause)
}

// Unwrap returns the underlying error.
func (e *Failure) Unwrap() error {
	return e.Cause
}

func newFailure(op, backend string, err error) *Failure {
	return &Failure{Op: op, Backend: backend, Reason: reasonOf(err), Cause: err}
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	case errors.Is(err, ErrEmptyResponse):
		return ReasonEmpty
	}
	var panicked *panicError
	if errors.As(err, &panicked) {
		return ReasonPanic
	}
	return providers.Kind(err)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
