package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// Poll defaults.
const (
	DefaultPollInterval = 350 * time.Millisecond
	DefaultPollTimeout  = 15 * time.Second
)

// JobFetcher fetches job status. *Client implements it.
type JobFetcher interface {
	Job(ctx context.Context, id string) (*JobStatus, error)
}

// ProgressFunc is called after every successful status fetch.
type ProgressFunc func(progress int, status domain.JobStatus)

// PollerConfig configures a Poller. Zero values select the defaults.
type PollerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Poller waits for a job to reach a terminal state.
type Poller struct {
	jobs     JobFetcher
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller that reads job status through jobs.
func NewPoller(jobs JobFetcher, cfg PollerConfig, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		jobs:     jobs,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger.With("component", "poller"),
	}
}

// Poll fetches the job until it completes, fails or the timeout elapses.
// A failed fetch ends the poll at once; there are no retries.
func (p *Poller) Poll(ctx context.Context, jobID string, onProgress ProgressFunc) (*domain.GenerationResult, error) {
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		if time.Since(start) >= p.timeout {
			return nil, fmt.Errorf("%w after %s", ErrPollTimeout, p.timeout)
		}

		job, err := p.jobs.Job(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", ErrStatusUnavailable, err)
		}

		if onProgress != nil {
			onProgress(job.Progress, job.Status)
		}

		switch job.Status {
		case domain.JobStatusCompleted:
			if job.Result == nil {
				return &domain.GenerationResult{}, nil
			}
			return job.Result, nil
		case domain.JobStatusFailed:
			msg := MsgJobFailed
			if job.Error != nil && strings.TrimSpace(*job.Error) != "" {
				msg = *job.Error
			}
			return nil, &JobFailedError{JobID: jobID, Message: msg}
		}

		p.logger.Debug("job not finished", "job_id", jobID, "status", job.Status, "progress", job.Progress)
		timer.Reset(p.interval)
	}
}
