package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when slide content cannot be produced
	ErrGenerationFailed = errors.New("failed to generate slide content")

	// ErrInvalidRequest is returned for a slide request with missing or out-of-range fields
	ErrInvalidRequest = errors.New("invalid slide request")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
