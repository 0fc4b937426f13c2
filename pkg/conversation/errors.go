package conversation

import (
	"fmt"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
)

// Error kinds used in logs and metrics.
const (
	kindError = "error"
	kindPanic = "panic"
)

// InternalError is a failure inside a transition that the dialogue cannot
// recover from on its own. It is caught by Handle, which routes the
// session to the error stage without committing the failed turn.
type InternalError struct {
	// Stage is the stage the session was in when the turn failed.
	Stage session.Stage

	// Cause is the underlying error, or the recovered panic value.
	Cause error

	// Panic is true when the transition panicked.
	Panic bool
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Panic {
		return fmt.Sprintf("panic in stage %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("internal error in stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying error.
func (e *InternalError) Unwrap() error {
	return e.Cause
}

func (e *InternalError) kind() string {
	if e.Panic {
		return kindPanic
	}
	return kindError
}
