package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// SlideRequest identifies one slide of a generation job.
type SlideRequest struct {
	Topic      string
	Tone       domain.Tone
	ImageStyle domain.ImageStyle
	// Index is zero-based; Total is the number of slides in the job.
	Index int
	Total int
}

// NewSlideRequest builds the request for slide index of input.
func NewSlideRequest(input domain.GenerationInput, index int) SlideRequest {
	return SlideRequest{
		Topic:      input.Topic,
		Tone:       input.Tone,
		ImageStyle: input.ImageStyle,
		Index:      index,
		Total:      input.Count,
	}
}

// Validate checks that the request describes a slide within its job.
func (r SlideRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: topic is empty", ErrInvalidRequest)
	}
	if r.Total < 1 {
		return fmt.Errorf("%w: total must be positive, got %d", ErrInvalidRequest, r.Total)
	}
	if r.Index < 0 || r.Index >= r.Total {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidRequest, r.Index, r.Total)
	}
	return nil
}

// Number is the one-based slide number.
func (r SlideRequest) Number() int {
	return r.Index + 1
}

// IsLast reports whether this is the final slide of the job.
func (r SlideRequest) IsLast() bool {
	return r.Index+1 == r.Total
}

// SlideText is the copy shown on a slide.
type SlideText struct {
	Headline string
	Body     string
	CTA      string
}

// SlideImage describes the artwork behind a slide.
type SlideImage struct {
	Prompt string
	URL    string
}

// Generator produces the content of a single slide. Implementations must be
// safe for concurrent use since text and image are requested in parallel.
type Generator interface {
	// SlideText returns the headline, body and call to action for req.
	SlideText(ctx context.Context, req SlideRequest) (SlideText, error)

	// SlideImage returns the image prompt and URL for req.
	SlideImage(ctx context.Context, req SlideRequest) (SlideImage, error)
}
