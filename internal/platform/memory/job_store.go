package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
	"github.com/phrazzld/carousel-studio/internal/store"
)

// JobStore implements store.JobStore with a mutex-guarded map.
// Readers always receive deep copies so that in-flight tasks and HTTP
// handlers never share mutable state.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*domain.Job),
	}
}

// Create saves a new job.
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return store.ErrJobExists
	}
	s.jobs[job.ID] = job.Clone()

	logger.FromContext(ctx).Debug("job stored", "job_id", job.ID, "job_count", len(s.jobs))
	return nil
}

// Get retrieves a copy of the job with the given ID.
func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to a working copy of the job and stores it only if fn
// succeeds and the result is still valid.
func (s *JobStore) Update(ctx context.Context, id string, fn store.JobMutator) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if err := working.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.jobs[id] = working
	return working.Clone(), nil
}

// DeleteOlderThan removes every job created before cutoff.
func (s *JobStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

var _ store.JobStore = (*JobStore)(nil)
