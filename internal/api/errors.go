package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lmdah61/Japanese-Text-Server/internal/domain"
	"github.com/lmdah61/Japanese-Text-Server/internal/generation"
	"github.com/lmdah61/Japanese-Text-Server/internal/ratelimit"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. Each failure category maps to exactly one code.
func MapErrorToStatusCode(err error) int {
	switch {
	// Invalid input
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrEmptyTheme):
		return http.StatusBadRequest

	// Quota breach
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		return http.StatusTooManyRequests

	// Upstream call failures and unusable model output
	case errors.Is(err, generation.ErrUpstreamFailure),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrMalformedResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Validation errors name the offending field; upstream
// failures deliberately do not expose any internal detail.
//
// The generation sentinels are checked before the validation branch: a
// malformed model response carries the schema check failure as a wrapped
// ValidationError, and that internal detail must stay generic rather than
// surface as a client-input complaint.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		return "Rate limit exceeded. Please slow down."

	case errors.Is(err, generation.ErrMalformedResponse):
		return "Failed to process the generated text"

	case errors.Is(err, generation.ErrUpstreamFailure),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrGenerationFailed):
		return "Text generation failed"
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return "Invalid request: " + validationErr.Error()
	}

	return "An unexpected error occurred"
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'GenerateRequest.Theme' Error:Field validation for 'Theme' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
