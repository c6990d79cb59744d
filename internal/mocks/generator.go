package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/carousel-studio/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// SlideTextFn allows test cases to mock the SlideText behavior
	SlideTextFn func(ctx context.Context, req generation.SlideRequest) (generation.SlideText, error)

	// SlideImageFn allows test cases to mock the SlideImage behavior
	SlideImageFn func(ctx context.Context, req generation.SlideRequest) (generation.SlideImage, error)

	// Err is returned by both methods when the matching Fn is nil
	Err error

	mu       sync.Mutex
	textReqs []generation.SlideRequest
	imgReqs  []generation.SlideRequest
}

// SlideText implements the generation.Generator interface
func (m *MockGenerator) SlideText(ctx context.Context, req generation.SlideRequest) (generation.SlideText, error) {
	m.mu.Lock()
	m.textReqs = append(m.textReqs, req)
	m.mu.Unlock()

	if m.SlideTextFn != nil {
		return m.SlideTextFn(ctx, req)
	}
	if m.Err != nil {
		return generation.SlideText{}, m.Err
	}
	return DefaultSlideText(req), nil
}

// SlideImage implements the generation.Generator interface
func (m *MockGenerator) SlideImage(ctx context.Context, req generation.SlideRequest) (generation.SlideImage, error) {
	m.mu.Lock()
	m.imgReqs = append(m.imgReqs, req)
	m.mu.Unlock()

	if m.SlideImageFn != nil {
		return m.SlideImageFn(ctx, req)
	}
	if m.Err != nil {
		return generation.SlideImage{}, m.Err
	}
	return DefaultSlideImage(req), nil
}

// DefaultSlideText is the copy returned when no SlideTextFn is set.
func DefaultSlideText(req generation.SlideRequest) generation.SlideText {
	n := req.Number()
	return generation.SlideText{
		Headline: fmt.Sprintf("%s: slide %d", req.Topic, n),
		Body:     fmt.Sprintf("Body %d", n),
		CTA:      fmt.Sprintf("CTA %d", n),
	}
}

// DefaultSlideImage is the image returned when no SlideImageFn is set.
func DefaultSlideImage(req generation.SlideRequest) generation.SlideImage {
	return generation.SlideImage{
		Prompt: fmt.Sprintf("%s, %s style", req.Topic, req.ImageStyle),
		URL:    fmt.Sprintf("https://images.test/%d.png", req.Number()),
	}
}

// TextRequests returns the requests passed to SlideText so far.
func (m *MockGenerator) TextRequests() []generation.SlideRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.SlideRequest(nil), m.textReqs...)
}

// ImageRequests returns the requests passed to SlideImage so far.
func (m *MockGenerator) ImageRequests() []generation.SlideRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.SlideRequest(nil), m.imgReqs...)
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textReqs = nil
	m.imgReqs = nil
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// MockGeneratorThatFails creates a MockGenerator that simulates a generation failure
func MockGeneratorThatFails() *MockGenerator {
	return &MockGenerator{Err: generation.ErrGenerationFailed}
}

// NewMockGeneratorWithImageFailureAt fails only the image of the slide at index.
func NewMockGeneratorWithImageFailureAt(index int, err error) *MockGenerator {
	return &MockGenerator{
		SlideImageFn: func(_ context.Context, req generation.SlideRequest) (generation.SlideImage, error) {
			if req.Index == index {
				return generation.SlideImage{}, err
			}
			return DefaultSlideImage(req), nil
		},
	}
}

var _ generation.Generator = (*MockGenerator)(nil)
