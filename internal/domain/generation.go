package domain

import (
	"strings"
	"time"
)

// Tone selects the voice used for generated slide copy.
type Tone string

// Supported tones.
const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneBold         Tone = "bold"
	ToneEducational  Tone = "educational"
)

// ImageStyle selects the look of the placeholder slide imagery.
type ImageStyle string

// Supported image styles.
const (
	ImageStylePhoto        ImageStyle = "photo"
	ImageStyleIllustration ImageStyle = "illustration"
	ImageStyleAbstract     ImageStyle = "abstract"
)

// Input bounds and defaults for generation requests.
const (
	MinTopicLength    = 3
	MinSlideCount     = 1
	MaxSlideCount     = 12
	DefaultSlideCount = 5
	DefaultTone       = ToneProfessional
	DefaultImageStyle = ImageStyleIllustration
)

// Labels attached to every completed result.
const (
	ResultAuthor  = "Vibe Coding App"
	ResultVersion = "v2"
)

// MsgTopicTooShort is the user-facing message for a rejected topic.
const MsgTopicTooShort = "Topic must be at least 3 characters."

// IsValid reports whether t is one of the supported tones.
func (t Tone) IsValid() bool {
	switch t {
	case ToneProfessional, ToneFriendly, ToneBold, ToneEducational:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the supported image styles.
func (s ImageStyle) IsValid() bool {
	switch s {
	case ImageStylePhoto, ImageStyleIllustration, ImageStyleAbstract:
		return true
	default:
		return false
	}
}

// GenerationInput is the sanitized set of parameters for a generation job.
type GenerationInput struct {
	Topic      string     `json:"topic"`
	Tone       Tone       `json:"tone"`
	ImageStyle ImageStyle `json:"imageStyle"`
	Count      int        `json:"count"`
}

// NewGenerationInput trims and normalizes raw request values. Unknown tones and
// image styles fall back to their defaults, a zero count falls back to
// DefaultSlideCount and any other count is clamped to [MinSlideCount,
// MaxSlideCount]. The only hard failure is a topic shorter than MinTopicLength
// after trimming.
func NewGenerationInput(topic, tone, imageStyle string, count int) (GenerationInput, error) {
	topic = strings.TrimSpace(topic)
	if len([]rune(topic)) < MinTopicLength {
		return GenerationInput{}, NewValidationError("topic", MsgTopicTooShort, ErrValidation)
	}

	t := Tone(tone)
	if !t.IsValid() {
		t = DefaultTone
	}

	s := ImageStyle(imageStyle)
	if !s.IsValid() {
		s = DefaultImageStyle
	}

	return GenerationInput{
		Topic:      topic,
		Tone:       t,
		ImageStyle: s,
		Count:      ClampSlideCount(count),
	}, nil
}

// ClampSlideCount applies the default and the [MinSlideCount, MaxSlideCount] bounds.
func ClampSlideCount(count int) int {
	if count == 0 {
		count = DefaultSlideCount
	}
	if count < MinSlideCount {
		return MinSlideCount
	}
	if count > MaxSlideCount {
		return MaxSlideCount
	}
	return count
}

// Slide is one frame of a generated carousel.
type Slide struct {
	ID          string `json:"id"`
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	CTA         string `json:"cta"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

// GenerationMeta labels a completed result for display and export.
type GenerationMeta struct {
	Topic       string     `json:"topic"`
	Tone        Tone       `json:"tone"`
	ImageStyle  ImageStyle `json:"imageStyle"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Author      string     `json:"author"`
	Version     string     `json:"version"`
}

// GenerationResult is the payload of a completed job.
type GenerationResult struct {
	Meta   GenerationMeta `json:"meta"`
	Slides []Slide        `json:"slides"`
}

// Clone returns a deep copy of the result.
func (r *GenerationResult) Clone() *GenerationResult {
	if r == nil {
		return nil
	}
	out := &GenerationResult{Meta: r.Meta}
	out.Slides = append([]Slide(nil), r.Slides...)
	return out
}
