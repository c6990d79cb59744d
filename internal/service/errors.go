package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/phrazzld/carousel-studio/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps these to HTTP status codes.
var (
	// ErrJobNotFound indicates the job does not exist or was swept.
	ErrJobNotFound = errors.New("job not found")

	// ErrQueueFull indicates the job could not be scheduled because the
	// background queue is at capacity.
	ErrQueueFull = errors.New("generation queue is full")
)

// JobServiceError wraps errors from the job service with context.
type JobServiceError struct {
	// Operation is the operation that failed (e.g., "create_job")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for JobServiceError.
func (e *JobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *JobServiceError) Unwrap() error {
	return e.Err
}

// NewJobServiceError creates a new JobServiceError.
// It returns known sentinel errors directly without wrapping.
func NewJobServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, store.ErrNotFound):
		return ErrJobNotFound
	case errors.Is(err, ErrQueueFull), errors.Is(err, events.ErrHandlerBusy):
		return ErrQueueFull
	}

	return &JobServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
