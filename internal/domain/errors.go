// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or an engine input fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidGrade is returned when a review grade is not one of the enumerated values.
	ErrInvalidGrade = fmt.Errorf("%w: invalid review grade", ErrValidation)

	// ErrInvalidLearningStyle is returned when a learning style is not recognized.
	ErrInvalidLearningStyle = fmt.Errorf("%w: invalid learning style", ErrValidation)
)

// ValidationError describes a single field that failed validation.
// It wraps ErrValidation (or a more specific sentinel) so callers can use errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is wrapped.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
