package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrNoActiveSession         = errors.New("no active session")
	ErrActiveSessionExists     = errors.New("active session already exists")
	ErrTerminalState           = errors.New("work item is already done")
	ErrFeedbackNotOpen         = errors.New("feedback capture is not open")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// ValidationError reports a rejected field. It unwraps to ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure of the durable store or the generation
// service. It unwraps to both ErrCollaboratorUnavailable and the cause.
type CollaboratorError struct {
	Service string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrCollaboratorUnavailable, e.Err}
}

func Unavailable(service string, err error) error {
	return &CollaboratorError{Service: service, Err: err}
}

// IsRetryable returns true if the error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}
