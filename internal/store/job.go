package store

import (
	"context"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// JobMutator applies a change to a job inside JobStore.Update. Returning an
// error aborts the update and leaves the stored job untouched.
type JobMutator func(job *domain.Job) error

// JobStore defines the interface for generation job storage.
// Version: 1.0
type JobStore interface {
	// Create saves a new job.
	// Returns ErrInvalidEntity if the job fails validation and ErrJobExists
	// if a job with the same ID is already stored.
	Create(ctx context.Context, job *domain.Job) error

	// Get retrieves a copy of the job with the given ID.
	// Returns ErrJobNotFound if the job does not exist.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Update atomically applies fn to the stored job and persists the result.
	// Returns the updated copy, ErrJobNotFound if the job does not exist, or
	// the error returned by fn.
	Update(ctx context.Context, id string, fn JobMutator) (*domain.Job, error)

	// DeleteOlderThan removes every job created before cutoff, whatever its
	// status, and returns the IDs of the removed jobs.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}
