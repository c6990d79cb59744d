package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/service"
)

// MockJobService implements service.JobService for handler tests.
type MockJobService struct {
	CreateJobFn func(ctx context.Context, input domain.GenerationInput) (*domain.Job, error)
	GetJobFn    func(ctx context.Context, id string) (*domain.Job, error)
	SweepFn     func(ctx context.Context) (int, error)

	mu     sync.Mutex
	inputs []domain.GenerationInput
}

// CreateJob implements service.JobService. Without CreateJobFn it returns a
// fresh queued job for input.
func (m *MockJobService) CreateJob(ctx context.Context, input domain.GenerationInput) (*domain.Job, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()

	if m.CreateJobFn != nil {
		return m.CreateJobFn(ctx, input)
	}
	return domain.NewJob(input), nil
}

// GetJob implements service.JobService. Without GetJobFn every ID is unknown.
func (m *MockJobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return nil, service.ErrJobNotFound
}

// Sweep implements service.JobService.
func (m *MockJobService) Sweep(ctx context.Context) (int, error) {
	if m.SweepFn != nil {
		return m.SweepFn(ctx)
	}
	return 0, nil
}

// Inputs returns the inputs passed to CreateJob so far.
func (m *MockJobService) Inputs() []domain.GenerationInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationInput(nil), m.inputs...)
}

var _ service.JobService = (*MockJobService)(nil)
