package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepFunc removes expired work and reports how many items it removed.
type SweepFunc func(ctx context.Context) (int, error)

// Sweeper calls a SweepFunc on a fixed interval until stopped.
type Sweeper struct {
	sweep    SweepFunc
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSweeper creates a Sweeper. A non-positive interval defaults to one minute.
func NewSweeper(sweep SweepFunc, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		sweep:    sweep,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

// Stop ends the sweep loop and waits for an in-progress sweep to return.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.sweep(s.ctx)
			if err != nil {
				s.logger.Error("sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("swept expired jobs", "count", removed)
			}
		}
	}
}
