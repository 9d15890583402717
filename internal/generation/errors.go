package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when text generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate study text")

	// ErrUpstreamFailure is returned when the call to the language model
	// service fails: network error, non-2xx response, timeout, or empty body
	ErrUpstreamFailure = errors.New("language model service call failed")

	// ErrMalformedResponse is returned when the model output cannot be
	// normalized into the required schema
	ErrMalformedResponse = errors.New("malformed response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary upstream errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during text generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
