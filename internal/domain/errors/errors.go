package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrValidation          = errors.New("validation failed")
	ErrExternalAPI         = errors.New("external api failure")
	ErrServiceUnavailable  = errors.New("external service unavailable")
)

// ValidationError reports a single violated field. When several fields are
// invalid only the highest-priority violation is surfaced, required-ness
// before format.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError for the given field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ExternalAPIError carries the upstream status and payload of a failed
// cross-service call after the retry budget is exhausted.
type ExternalAPIError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *ExternalAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s call failed with status %d", e.Service, e.Status)
}

func (e *ExternalAPIError) Unwrap() error { return ErrExternalAPI }
