package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/phrazzld/carousel-studio/internal/domain"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrNoSlides is returned when there is nothing to export.
var ErrNoSlides = errors.New("Generate slides first.") //nolint:staticcheck // user-facing text

// Canvas geometry and colours.
const (
	CanvasSize        = 1080
	DefaultBackground = "#0f172a"
	TextColor         = "#ffffff"
	CTAColor          = "#a5b4fc"
	ImageAlpha        = 0.35
	TextX             = 80
	MaxTextWidth      = 920
)

// textBlock places one wrapped block of text.
type textBlock struct {
	size       float64
	bold       bool
	color      string
	y          float64
	lineHeight float64
}

// imageMask blends the slide image over the background at ImageAlpha.
var imageMask = image.NewUniform(color.Alpha{A: uint8(math.Round(ImageAlpha * 255))})

var (
	headlineBlock = textBlock{size: 54, bold: true, color: TextColor, y: 150, lineHeight: 64}
	bodyBlock     = textBlock{size: 36, color: TextColor, y: 320, lineHeight: 48}
	ctaBlock      = textBlock{size: 32, bold: true, color: CTAColor, y: 940, lineHeight: 44}
)

// Gradient is a diagonal linear gradient from the top-left to the
// bottom-right corner.
type Gradient struct {
	From string
	To   string
}

// Background selects the canvas fill. A solid Color is used unless Gradient
// is set.
type Background struct {
	Color    string
	Gradient *Gradient
}

// Options configures a Renderer.
type Options struct {
	Background Background
	// Images is optional. Without it slides render without imagery.
	Images ImageFetcher
	Logger *slog.Logger
}

// Renderer draws slides onto square canvases.
type Renderer struct {
	background Background
	images     ImageFetcher
	regular    *truetype.Font
	bold       *truetype.Font
	logger     *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	bg := opts.Background
	if strings.TrimSpace(bg.Color) == "" {
		bg.Color = DefaultBackground
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		background: bg,
		images:     opts.Images,
		regular:    regular,
		bold:       bold,
		logger:     logger.With("component", "export_renderer"),
	}, nil
}

// Render draws slide onto a new canvas.
func (r *Renderer) Render(ctx context.Context, slide domain.Slide) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	dc := gg.NewContextForRGBA(canvas)

	r.fillBackground(dc)
	r.drawImage(ctx, canvas, slide)

	faces := make([]font.Face, 0, 3)
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for _, block := range []struct {
		text string
		textBlock
	}{
		{slide.Headline, headlineBlock},
		{slide.Body, bodyBlock},
		{slide.CTA, ctaBlock},
	} {
		face := r.face(block.textBlock)
		faces = append(faces, face)
		drawBlock(dc, face, block.textBlock, block.text)
	}

	return canvas, nil
}

// RenderPNG renders slide and writes it to w as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, slide domain.Slide, w io.Writer) error {
	canvas, err := r.Render(ctx, slide)
	if err != nil {
		return err
	}
	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) fillBackground(dc *gg.Context) {
	if g := r.background.Gradient; g != nil {
		grad := gg.NewLinearGradient(0, 0, CanvasSize, CanvasSize)
		grad.AddColorStop(0, parseHex(g.From, r.background.Color))
		grad.AddColorStop(1, parseHex(g.To, r.background.Color))
		dc.SetFillStyle(grad)
	} else {
		dc.SetColor(parseHex(r.background.Color, DefaultBackground))
	}
	dc.DrawRectangle(0, 0, CanvasSize, CanvasSize)
	dc.Fill()
}

// drawImage stretches the slide image over the canvas at ImageAlpha. Any
// failure leaves the background as it is.
func (r *Renderer) drawImage(ctx context.Context, canvas *image.RGBA, slide domain.Slide) {
	if r.images == nil || strings.TrimSpace(slide.ImageURL) == "" {
		return
	}

	img, err := r.images.Fetch(ctx, slide.ImageURL)
	if err != nil || img == nil {
		r.logger.Debug("slide image unavailable, using plain background",
			"slide_id", slide.ID,
			"error", err)
		return
	}

	scaled := image.NewRGBA(canvas.Bounds())
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	draw.DrawMask(canvas, canvas.Bounds(), scaled, image.Point{}, imageMask, image.Point{}, draw.Over)
}

func (r *Renderer) face(b textBlock) font.Face {
	f := r.regular
	if b.bold {
		f = r.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: b.size, DPI: 72, Hinting: font.HintingFull})
}

func drawBlock(dc *gg.Context, face font.Face, b textBlock, text string) {
	dc.SetFontFace(face)
	dc.SetColor(parseHex(b.color, TextColor))

	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}

	y := b.y
	for _, line := range WrapLines(measure, text, MaxTextWidth) {
		dc.DrawString(line, TextX, y)
		y += b.lineHeight
	}
}

// parseHex parses #rgb or #rrggbb, falling back to fallback when s is invalid.
func parseHex(s, fallback string) color.Color {
	if c, ok := hexColor(s); ok {
		return c
	}
	c, _ := hexColor(fallback)
	return c
}

func hexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	var v [3]uint8
	for i := range v {
		hi, ok1 := hexNibble(s[2*i])
		lo, ok2 := hexNibble(s[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, false
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}, true
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
