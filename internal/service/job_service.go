package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/phrazzld/carousel-studio/internal/store"
)

// MsgQueueFull is recorded on a job that could not be scheduled.
const MsgQueueFull = "Generation queue is full, try again later"

// DefaultRetention is how long a job is kept after creation.
const DefaultRetention = 30 * time.Minute

// HandleForgetter drops per-job task handles once their jobs are swept.
type HandleForgetter interface {
	Forget(ids ...string)
}

// JobService provides generation job operations
type JobService interface {
	// CreateJob stores a queued job for input and schedules its generation.
	// The returned job reflects the state at creation time.
	CreateJob(ctx context.Context, input domain.GenerationInput) (*domain.Job, error)

	// GetJob returns a snapshot of the job with the given ID.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// Sweep removes jobs older than the retention window and returns how
	// many were removed.
	Sweep(ctx context.Context) (int, error)
}

// JobServiceConfig configures NewJobService.
type JobServiceConfig struct {
	Retention time.Duration
	// Handles is optional.
	Handles HandleForgetter
	// Now defaults to time.Now.
	Now func() time.Time
}

type jobServiceImpl struct {
	jobs      store.JobStore
	emitter   events.EventEmitter
	handles   HandleForgetter
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewJobService creates a new JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(
	jobs store.JobStore,
	emitter events.EventEmitter,
	cfg JobServiceConfig,
	logger *slog.Logger,
) (JobService, error) {
	if jobs == nil {
		return nil, &JobServiceError{Operation: "create_service", Message: "job store cannot be nil"}
	}
	if emitter == nil {
		return nil, &JobServiceError{Operation: "create_service", Message: "event emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &jobServiceImpl{
		jobs:      jobs,
		emitter:   emitter,
		handles:   cfg.Handles,
		retention: cfg.Retention,
		now:       cfg.Now,
		logger:    logger.With("component", "job_service"),
	}, nil
}

// CreateJob implements JobService.
func (s *jobServiceImpl) CreateJob(ctx context.Context, input domain.GenerationInput) (*domain.Job, error) {
	job := domain.NewJob(input)
	created := job.Clone()

	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error("failed to store job", "error", err, "job_id", job.ID)
		return nil, NewJobServiceError("create_job", "failed to store job", err)
	}

	s.logger.Info("job created",
		"job_id", job.ID,
		"topic_length", len(input.Topic),
		"tone", input.Tone,
		"image_style", input.ImageStyle,
		"count", input.Count)

	event, err := events.NewSlideGenerationEvent(job.ID)
	if err != nil {
		s.abandon(ctx, job.ID, domain.DefaultFailureMessage)
		return nil, NewJobServiceError("create_job", "failed to create event", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		svcErr := NewJobServiceError("create_job", "failed to schedule generation", err)
		msg := domain.DefaultFailureMessage
		if errors.Is(svcErr, ErrQueueFull) {
			msg = MsgQueueFull
		}
		s.logger.Error("failed to emit slide generation event",
			"error", err,
			"job_id", job.ID,
			"event_id", event.ID)
		s.abandon(ctx, job.ID, msg)
		return nil, svcErr
	}

	return created, nil
}

// abandon fails a job that will never be picked up so pollers see a terminal state.
func (s *jobServiceImpl) abandon(ctx context.Context, id, msg string) {
	_, err := s.jobs.Update(context.WithoutCancel(ctx), id, func(j *domain.Job) error {
		return j.Fail(msg)
	})
	if err != nil {
		s.logger.Error("failed to mark unscheduled job as failed", "error", err, "job_id", id)
	}
}

// GetJob implements JobService.
func (s *jobServiceImpl) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to retrieve job", "error", err, "job_id", id)
		}
		return nil, NewJobServiceError("get_job", "failed to retrieve job", err)
	}
	return job, nil
}

// Sweep implements JobService.
func (s *jobServiceImpl) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	ids, err := s.jobs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, NewJobServiceError("sweep", "failed to delete expired jobs", err)
	}
	if len(ids) > 0 && s.handles != nil {
		s.handles.Forget(ids...)
	}
	s.logger.Debug("sweep finished", "removed", len(ids), "cutoff", cutoff)
	return len(ids), nil
}
