package generation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// DefaultImageBaseURL is the placeholder image service used when none is configured.
const DefaultImageBaseURL = "https://picsum.photos"

// Image dimensions requested from the placeholder service.
const imageSize = 1024

const (
	ctaNext = "Keep swiping for the next idea."
	ctaLast = "Ready to launch? Start now."
)

var toneAngles = map[domain.Tone][]string{
	domain.ToneProfessional: {"strategic", "results-driven", "clear", "credible"},
	domain.ToneFriendly:     {"warm", "approachable", "encouraging", "conversational"},
	domain.ToneBold:         {"confident", "high-energy", "direct", "provocative"},
	domain.ToneEducational:  {"informative", "structured", "insightful", "practical"},
}

// Angle returns the descriptive angle used for slide index under tone.
// Unknown tones use the professional pool.
func Angle(tone domain.Tone, index int) string {
	pool, ok := toneAngles[tone]
	if !ok {
		pool = toneAngles[domain.DefaultTone]
	}
	if index < 0 {
		index = -index
	}
	return pool[index%len(pool)]
}

// DelayRange bounds a uniformly random simulated latency.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

func (d DelayRange) pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)+1))
}

// TemplateConfig configures a TemplateGenerator.
type TemplateConfig struct {
	ImageBaseURL string
	TextDelay    DelayRange
	ImageDelay   DelayRange
}

// TemplateGenerator implements Generator with fixed templates.
type TemplateGenerator struct {
	baseURL    string
	textDelay  DelayRange
	imageDelay DelayRange
	logger     *slog.Logger
}

// NewTemplateGenerator validates cfg and returns a generator.
func NewTemplateGenerator(cfg TemplateConfig, logger *slog.Logger) (*TemplateGenerator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/")
	if base == "" {
		base = DefaultImageBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: image base url %q", ErrInvalidConfig, cfg.ImageBaseURL)
	}

	for name, d := range map[string]DelayRange{"text": cfg.TextDelay, "image": cfg.ImageDelay} {
		if d.Min < 0 || d.Max < 0 {
			return nil, fmt.Errorf("%w: negative %s delay", ErrInvalidConfig, name)
		}
	}

	return &TemplateGenerator{
		baseURL:    base,
		textDelay:  cfg.TextDelay,
		imageDelay: cfg.ImageDelay,
		logger:     logger.With("component", "template_generator"),
	}, nil
}

// SlideText implements Generator.
func (g *TemplateGenerator) SlideText(ctx context.Context, req SlideRequest) (SlideText, error) {
	if err := req.Validate(); err != nil {
		return SlideText{}, err
	}
	if err := sleep(ctx, g.textDelay.pick()); err != nil {
		return SlideText{}, err
	}

	angle := Angle(req.Tone, req.Index)
	cta := ctaNext
	if req.IsLast() {
		cta = ctaLast
	}

	g.logger.Debug("generated slide text", "slide", req.Number(), "total", req.Total, "angle", angle)

	return SlideText{
		Headline: fmt.Sprintf("%s: %s insight %d", req.Topic, angle, req.Number()),
		Body: fmt.Sprintf("Frame %d/%d gives a %s perspective on %s. ", req.Number(), req.Total, angle, req.Topic) +
			"Use this slide to communicate a practical takeaway and momentum.",
		CTA: cta,
	}, nil
}

// SlideImage implements Generator.
func (g *TemplateGenerator) SlideImage(ctx context.Context, req SlideRequest) (SlideImage, error) {
	if err := req.Validate(); err != nil {
		return SlideImage{}, err
	}
	if err := sleep(ctx, g.imageDelay.pick()); err != nil {
		return SlideImage{}, err
	}

	seed := fmt.Sprintf("%s-%s-%d", req.Topic, req.ImageStyle, req.Number())
	return SlideImage{
		Prompt: fmt.Sprintf("%s %s social carousel square composition %d", req.ImageStyle, req.Topic, req.Number()),
		URL:    fmt.Sprintf("%s/seed/%s/%d/%d", g.baseURL, EncodeSeed(seed), imageSize, imageSize),
	}, nil
}

// EncodeSeed escapes s as a single URL path segment the way browsers'
// encodeURIComponent does, so spaces become %20.
func EncodeSeed(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}
	return escaped
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Generator = (*TemplateGenerator)(nil)
