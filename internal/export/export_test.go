package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlide(n int) domain.Slide {
	return domain.Slide{
		ID:       "slide-job-1-" + string(rune('0'+n)),
		Headline: "Coffee: clear insight",
		Body:     "Frame 1/3 gives a clear perspective on Coffee. Use this slide to communicate a practical takeaway and momentum.",
		CTA:      "Keep swiping for the next idea.",
		ImageURL: "https://picsum.photos/seed/Coffee-illustration-1/1024/1024",
	}
}

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(opts)
	require.NoError(t, err)
	return r
}

func TestRender_Background(t *testing.T) {
	r := newTestRenderer(t, Options{})
	canvas, err := r.Render(context.Background(), domain.Slide{ID: "s"})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, CanvasSize, CanvasSize), canvas.Bounds())
	assert.Equal(t, color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, canvas.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, canvas.RGBAAt(1075, 1075))
}

func TestRender_Gradient(t *testing.T) {
	r := newTestRenderer(t, Options{Background: Background{Gradient: &Gradient{From: "#ff0000", To: "#0000ff"}}})
	canvas, err := r.Render(context.Background(), domain.Slide{ID: "s"})
	require.NoError(t, err)

	topLeft := canvas.RGBAAt(0, 0)
	bottomRight := canvas.RGBAAt(CanvasSize-1, CanvasSize-1)
	assert.Greater(t, topLeft.R, topLeft.B)
	assert.Greater(t, bottomRight.B, bottomRight.R)
}

func TestRender_ImageOverlay(t *testing.T) {
	fetcher := ImageFetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		return solidImage(color.White), nil
	})
	r := newTestRenderer(t, Options{Images: fetcher})

	canvas, err := r.Render(context.Background(), domain.Slide{ID: "s", ImageURL: "https://example.com/a.png"})
	require.NoError(t, err)

	// 0.35 white over #0f172a
	px := canvas.RGBAAt(540, 700)
	assert.InDelta(t, 0x0f+0.35*(255-0x0f), float64(px.R), 2)
	assert.InDelta(t, 0x2a+0.35*(255-0x2a), float64(px.B), 2)
}

func TestRender_ImageMaskAlpha(t *testing.T) {
	assert.Equal(t, color.Alpha{A: 89}, imageMask.C)

	fetcher := ImageFetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		return solidImage(color.White), nil
	})
	r := newTestRenderer(t, Options{Images: fetcher})
	canvas, err := r.Render(context.Background(), domain.Slide{ID: "s", ImageURL: "https://example.com/a.png"})
	require.NoError(t, err)

	// dst + (255-dst)*89/255 per channel
	px := canvas.RGBAAt(540, 700)
	assert.InDelta(t, 0x0f+(255-0x0f)*89.0/255, float64(px.R), 1)
	assert.InDelta(t, 0x17+(255-0x17)*89.0/255, float64(px.G), 1)
	assert.InDelta(t, 0x2a+(255-0x2a)*89.0/255, float64(px.B), 1)
	assert.Equal(t, uint8(0xff), px.A)
}

func TestRender_ImageFailureKeepsBackground(t *testing.T) {
	fetcher := ImageFetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		return nil, errors.New("cors blocked")
	})
	r := newTestRenderer(t, Options{Images: fetcher})

	canvas, err := r.Render(context.Background(), domain.Slide{ID: "s", ImageURL: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, canvas.RGBAAt(540, 700))
}

func TestRender_DrawsText(t *testing.T) {
	r := newTestRenderer(t, Options{})
	canvas, err := r.Render(context.Background(), testSlide(1))
	require.NoError(t, err)

	bg := color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	changed := func(y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			for x := TextX; x < TextX+MaxTextWidth; x++ {
				if canvas.RGBAAt(x, y) != bg {
					return true
				}
			}
		}
		return false
	}
	assert.True(t, changed(100, 160), "headline")
	assert.True(t, changed(290, 330), "body")
	assert.True(t, changed(910, 950), "cta")
	assert.False(t, changed(600, 800), "gap between body and cta")
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRenderer(t, Options{}).Render(ctx, testSlide(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer(t, Options{}).RenderPNG(context.Background(), testSlide(1), &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, CanvasSize, img.Bounds().Dx())
	assert.Equal(t, CanvasSize, img.Bounds().Dy())
}

func TestRenderPDF(t *testing.T) {
	r := newTestRenderer(t, Options{})
	slides := []domain.Slide{testSlide(1), testSlide(2), testSlide(3)}
	meta := domain.GenerationMeta{
		Topic:      "Coffee",
		Tone:       domain.ToneBold,
		ImageStyle: domain.ImageStylePhoto,
		Author:     "Vibe Coding App",
		Version:    "v2",
	}

	path := filepath.Join(t.TempDir(), PDFFileName(time.UnixMilli(1700000000000)))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, r.RenderPDF(context.Background(), slides, meta, f))
	require.NoError(t, f.Close())
	assert.Equal(t, "carousel-1700000000000.pdf", filepath.Base(path))

	file, reader, err := pdf.Open(path)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, 3, reader.NumPage())
	info := reader.Trailer().Key("Info")
	assert.Equal(t, "Coffee Carousel", info.Key("Title").Text())
	assert.Equal(t, "Tone: bold; Style: photo; Version: v2", info.Key("Subject").Text())
	assert.Equal(t, "carousel,ai,Coffee", info.Key("Keywords").Text())
}

func TestRenderPDF_NoSlides(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer(t, Options{}).RenderPDF(context.Background(), nil, domain.GenerationMeta{}, &buf)
	assert.ErrorIs(t, err, ErrNoSlides)
	assert.Equal(t, "Generate slides first.", err.Error())
	assert.Zero(t, buf.Len())
}

func TestNewDocumentInfo(t *testing.T) {
	assert.Equal(t, DocumentInfo{
		Title:    "AI Carousel Carousel",
		Subject:  "Tone: n/a; Style: n/a; Version: n/a",
		Author:   "Vibe Coding App",
		Keywords: "carousel,ai,",
		Creator:  "Vibe Coding App",
	}, NewDocumentInfo(domain.GenerationMeta{}))

	info := NewDocumentInfo(domain.GenerationMeta{Topic: "Tea", Author: "Studio", Tone: domain.ToneFriendly})
	assert.Equal(t, "Tea Carousel", info.Title)
	assert.Equal(t, "Studio", info.Author)
	assert.Equal(t, "Tone: friendly; Style: n/a; Version: n/a", info.Subject)
}

func TestPNGFileName(t *testing.T) {
	assert.Equal(t, "slide-job-1-abc-2.png", PNGFileName(domain.Slide{ID: "slide-job-1-abc-2"}))
}

func TestHTTPImageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_ = png.Encode(w, solidImage(color.White))
		case "/redirect":
			http.Redirect(w, r, "/ok.png", http.StatusFound)
		case "/garbage":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPImageFetcher()
	img, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	_, err = f.Fetch(context.Background(), srv.URL+"/redirect")
	assert.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/garbage")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestHexColor(t *testing.T) {
	c, ok := hexColor("#a5b4fc")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xa5, G: 0xb4, B: 0xfc, A: 0xff}, c)

	c, ok = hexColor("fff")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	_, ok = hexColor("#12345z")
	assert.False(t, ok)
	assert.Equal(t, color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, parseHex("nope", DefaultBackground))
}

func TestHTTPImageFetcher_AllowedHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/away" {
			http.Redirect(w, r, "http://localhost.invalid/x.png", http.StatusFound)
			return
		}
		_ = png.Encode(w, solidImage(color.White))
	}))
	defer srv.Close()

	f := NewHTTPImageFetcher()
	f.AllowedHosts = []string{"127.0.0.1"}

	_, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/away")
	assert.ErrorIs(t, err, ErrHostNotAllowed)

	_, err = f.Fetch(context.Background(), "http://169.254.169.254/latest/meta-data")
	assert.ErrorIs(t, err, ErrHostNotAllowed)

	assert.True(t, (&HTTPImageFetcher{AllowedHosts: []string{"picsum.photos"}}).allowed("fastly.picsum.photos"))
	assert.False(t, (&HTTPImageFetcher{AllowedHosts: []string{"picsum.photos"}}).allowed("evilpicsum.photos"))
}
