// Package domain defines the core entities and errors for Japanese text
// generation: JLPT levels, generation requests, and the structured study
// artifact returned to clients.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a generation request fails validation.
	// This is often wrapped with a more specific, field-naming error.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidLevel is returned when a JLPT level is outside the
	// enumerated set N5, N4, N3, N2, N1.
	ErrInvalidLevel = errors.New("invalid JLPT level")

	// ErrEmptyTheme is returned when the theme is empty or whitespace-only.
	ErrEmptyTheme = errors.New("theme cannot be empty")

	// ErrIncompleteResult is returned when a generation result is missing
	// one or more of its required fields.
	ErrIncompleteResult = errors.New("incomplete generation result")
)

// ValidationError describes a validation failure on a named request field.
// It wraps one of the sentinel errors above so callers can classify it with
// errors.Is while still surfacing which field was at fault.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
