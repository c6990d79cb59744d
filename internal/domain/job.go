package domain

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

// Possible job status values
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Progress milestones used by the generation lifecycle.
const (
	ProgressQueued  = 0
	ProgressStarted = 5
	ProgressDone    = 100
)

// DefaultFailureMessage is recorded when a task fails without a message.
const DefaultFailureMessage = "Generation failed"

// IsTerminal reports whether no further transitions are allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// IsValid reports whether s is a known status.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// Job tracks one asynchronous generation request from creation until it is
// swept. Its fields are only changed through the methods below so that:
//   - Progress never decreases while the job is active,
//   - Result is non-nil iff Status is completed,
//   - Error is non-nil iff Status is failed.
type Job struct {
	ID        string            `json:"id"`
	Status    JobStatus         `json:"status"`
	Progress  int               `json:"progress"`
	Input     GenerationInput   `json:"input"`
	Result    *GenerationResult `json:"result"`
	Error     *string           `json:"error"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewJob creates a queued job for the given input.
func NewJob(input GenerationInput) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        NewJobID(now),
		Status:    JobStatusQueued,
		Progress:  ProgressQueued,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewJobID builds an identifier of the form job-<unix-millis>-<7 base36 chars>.
func NewJobID(now time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(suffix) < 7 {
		suffix = strings.Repeat("0", 7-len(suffix)) + suffix
	}
	return fmt.Sprintf("job-%d-%s", now.UnixMilli(), suffix[:7])
}

// Validate checks the structural invariants of the job.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}
	if !j.Status.IsValid() {
		return ErrInvalidJobStatus
	}
	if (j.Result != nil) != (j.Status == JobStatusCompleted) {
		return fmt.Errorf("%w: result present with status %s", ErrValidation, j.Status)
	}
	if (j.Error != nil) != (j.Status == JobStatusFailed) {
		return fmt.Errorf("%w: error present with status %s", ErrValidation, j.Status)
	}
	return nil
}

// Start moves a queued job to running at the initial progress milestone.
func (j *Job) Start() error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	j.Status = JobStatusRunning
	j.advance(ProgressStarted)
	j.touch()
	return nil
}

// SetProgress records progress for an active job. Values are clamped to
// [0, 100] and a value lower than the current progress is ignored.
func (j *Job) SetProgress(progress int) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	j.advance(progress)
	j.touch()
	return nil
}

// Complete stores the result and marks the job completed at 100%.
func (j *Job) Complete(result *GenerationResult) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	if result == nil {
		return fmt.Errorf("%w: completed job requires a result", ErrValidation)
	}
	j.Status = JobStatusCompleted
	j.Progress = ProgressDone
	j.Result = result
	j.Error = nil
	j.touch()
	return nil
}

// Fail records the failure message and discards any partial result.
func (j *Job) Fail(message string) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultFailureMessage
	}
	j.Status = JobStatusFailed
	j.Result = nil
	j.Error = &message
	j.touch()
	return nil
}

// Clone returns a deep copy safe to hand out to readers.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Result = j.Result.Clone()
	if j.Error != nil {
		msg := *j.Error
		out.Error = &msg
	}
	return &out
}

func (j *Job) advance(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > ProgressDone {
		progress = ProgressDone
	}
	if progress > j.Progress {
		j.Progress = progress
	}
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now().UTC()
}
