package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/carousel-studio/internal/api/shared"
	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/export"
	"github.com/phrazzld/carousel-studio/internal/service"
	"github.com/phrazzld/carousel-studio/internal/store"
)

// Client-facing error messages.
const (
	MsgJobNotFound       = "Job not found"
	MsgInvalidJSON       = "Invalid JSON"
	MsgPayloadTooLarge   = "Payload too large"
	MsgForbidden         = "Forbidden"
	MsgNoSelection       = "Select a slide first."
	MsgInvalidRequest    = "Invalid request"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never reach clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidJSON):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	case errors.Is(err, export.ErrNoSlides):
		return http.StatusBadRequest

	case errors.Is(err, shared.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message a client may see for err.
// Validation messages are written for end users and pass through unchanged.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedFailure
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message

	case errors.Is(err, shared.ErrInvalidJSON):
		return MsgInvalidJSON

	case errors.Is(err, shared.ErrPayloadTooLarge):
		return MsgPayloadTooLarge

	case errors.Is(err, export.ErrNoSlides):
		return export.ErrNoSlides.Error()

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return MsgJobNotFound

	case errors.Is(err, service.ErrQueueFull):
		return service.MsgQueueFull

	default:
		return MsgUnexpectedFailure
	}
}

// SanitizeValidationError turns struct validation failures into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MsgInvalidRequest
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "max":
		return "too long"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}

// respondWithMappedError writes the status and safe message for err.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
