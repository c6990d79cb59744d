package client

import (
	"errors"
	"fmt"
)

// Poll outcomes.
var (
	// ErrJobFailed is matched by errors reporting a failed generation job.
	ErrJobFailed = errors.New("generation job failed")

	// ErrPollTimeout is returned when a job is still running after the poll window.
	ErrPollTimeout = errors.New("generation timed out")

	// ErrStatusUnavailable wraps failures to fetch a job's status.
	ErrStatusUnavailable = errors.New("unable to fetch generation job status")
)

// Messages shown to end users for the poll outcomes above.
const (
	MsgJobFailed         = "Generation failed."
	MsgPollTimeout       = "Generation timed out. Please try again."
	MsgStatusUnavailable = "Unable to fetch generation job status."
	MsgQueueFailed       = "Failed to queue generation."
)

// APIError is returned for non-2xx API responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// JobFailedError carries the failure message recorded on a job.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// Is reports whether target is ErrJobFailed.
func (e *JobFailedError) Is(target error) bool {
	return target == ErrJobFailed
}

// UserMessage returns the text a client UI should show for err.
func UserMessage(err error) string {
	var failed *JobFailedError
	var apiErr *APIError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &failed):
		return failed.Message
	case errors.Is(err, ErrPollTimeout):
		return MsgPollTimeout
	case errors.Is(err, ErrStatusUnavailable):
		return MsgStatusUnavailable
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return MsgQueueFailed
	}
}
