package plans

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPlanNotFound is returned when no plan has the requested ID.
var ErrPlanNotFound = errors.New("plan not found")

// NotFoundError carries the plan ID that failed to resolve. It matches
// ErrPlanNotFound with errors.Is.
type NotFoundError struct {
	PlanID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan %q not found", e.PlanID)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *NotFoundError) Unwrap() error {
	return ErrPlanNotFound
}

// LoadError represents a file system or limit error while loading a plan file.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load plan file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load plan file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a plan file that could not be decoded.
type ParseError struct {
	// FilePath is the path to the file that failed to parse
	FilePath string

	// Message describes the parsing error
	Message string

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorList contains the errors of a multi-file load where some files may
// have succeeded.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}
