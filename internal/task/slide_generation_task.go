package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/generation"
	"github.com/phrazzld/carousel-studio/internal/redact"
	"github.com/phrazzld/carousel-studio/internal/store"
	"golang.org/x/sync/errgroup"
)

// Common errors
var (
	ErrNilJobStore  = errors.New("job store cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyJobID   = errors.New("job ID cannot be empty")
)

// Progress returns the job progress after slide index (zero-based) of total
// has been generated: 5 at start, 95 after the last slide.
func Progress(index, total int) int {
	if total <= 0 {
		return domain.ProgressStarted
	}
	return int(math.Round(float64(index+1)/float64(total)*90)) + domain.ProgressStarted
}

// SlideID returns the identifier of slide number n (one-based) of a job.
func SlideID(jobID string, n int) string {
	return fmt.Sprintf("slide-%s-%d", jobID, n)
}

type slideGenerationPayload struct {
	JobID string `json:"job_id"`
}

// SlideGenerationTask implements the Task interface for generating the
// slides of one job. Its ID is the job ID.
type SlideGenerationTask struct {
	jobID     string
	jobs      store.JobStore
	generator generation.Generator
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	status TaskStatus
}

// NewSlideGenerationTask creates a new slide generation task
func NewSlideGenerationTask(
	jobID string,
	jobs store.JobStore,
	generator generation.Generator,
	logger *slog.Logger,
) (*SlideGenerationTask, error) {
	if jobs == nil {
		return nil, ErrNilJobStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == "" {
		return nil, ErrEmptyJobID
	}

	return &SlideGenerationTask{
		jobID:     jobID,
		jobs:      jobs,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeSlideGeneration, "job_id", jobID),
		now:       func() time.Time { return time.Now().UTC() },
		status:    TaskStatusPending,
	}, nil
}

// ID returns the job ID
func (t *SlideGenerationTask) ID() string {
	return t.jobID
}

// Type returns the task type identifier
func (t *SlideGenerationTask) Type() string {
	return TaskTypeSlideGeneration
}

// Payload returns the task data as a byte slice
func (t *SlideGenerationTask) Payload() []byte {
	data, err := json.Marshal(slideGenerationPayload{JobID: t.jobID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *SlideGenerationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *SlideGenerationTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute moves the job to running, generates each slide's text and image
// concurrently, records progress after every slide and completes the job
// with the assembled result. Any failure marks the job failed and discards
// the slides generated so far.
func (t *SlideGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Info("starting slide generation task")

	job, err := t.jobs.Update(ctx, t.jobID, func(j *domain.Job) error {
		return j.Start()
	})
	if err != nil {
		t.setStatus(TaskStatusFailed)
		t.logger.Error("failed to start job", "error", err)
		return fmt.Errorf("failed to start job: %w", err)
	}

	input := job.Input
	slides := make([]domain.Slide, 0, input.Count)

	for i := 0; i < input.Count; i++ {
		slide, err := t.generateSlide(ctx, input, i)
		if err != nil {
			return t.fail(ctx, err, "slide", i+1)
		}
		slides = append(slides, slide)

		progress := Progress(i, input.Count)
		if _, err := t.jobs.Update(ctx, t.jobID, func(j *domain.Job) error {
			return j.SetProgress(progress)
		}); err != nil {
			return t.fail(ctx, err)
		}
		t.logger.Debug("slide generated", "slide", i+1, "progress", progress)
	}

	result := &domain.GenerationResult{
		Meta: domain.GenerationMeta{
			Topic:       input.Topic,
			Tone:        input.Tone,
			ImageStyle:  input.ImageStyle,
			GeneratedAt: t.now(),
			Author:      domain.ResultAuthor,
			Version:     domain.ResultVersion,
		},
		Slides: slides,
	}

	if _, err := t.jobs.Update(ctx, t.jobID, func(j *domain.Job) error {
		return j.Complete(result)
	}); err != nil {
		return t.fail(ctx, err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("slide generation task completed", "slides", len(slides))
	return nil
}

func (t *SlideGenerationTask) generateSlide(ctx context.Context, input domain.GenerationInput, index int) (domain.Slide, error) {
	req := generation.NewSlideRequest(input, index)

	var (
		text  generation.SlideText
		image generation.SlideImage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		text, err = t.generator.SlideText(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		image, err = t.generator.SlideImage(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Slide{}, err
	}

	return domain.Slide{
		ID:          SlideID(t.jobID, req.Number()),
		Headline:    text.Headline,
		Body:        text.Body,
		CTA:         text.CTA,
		ImagePrompt: image.Prompt,
		ImageURL:    image.URL,
	}, nil
}

// fail records cause's message on the job as is; only the log line is
// redacted. The write ignores ctx cancellation so a shutdown still leaves the
// job in a terminal state.
func (t *SlideGenerationTask) fail(ctx context.Context, cause error, attrs ...any) error {
	t.setStatus(TaskStatusFailed)
	msg := strings.TrimSpace(cause.Error())
	if msg == "" {
		msg = domain.DefaultFailureMessage
	}
	t.logger.Error("slide generation failed", append(attrs, "error", redact.Error(cause))...)

	_, err := t.jobs.Update(context.WithoutCancel(ctx), t.jobID, func(j *domain.Job) error {
		return j.Fail(msg)
	})
	if err != nil && !store.IsNotFoundError(err) {
		t.logger.Error("failed to record job failure", "error", err)
	}
	return fmt.Errorf("slide generation failed: %w", cause)
}
