package export

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/phrazzld/carousel-studio/internal/domain"
)

// JPEGQuality is used for slide images embedded in PDFs.
const JPEGQuality = 92

// Document labels.
const (
	DefaultTitleTopic = "AI Carousel"
	DocumentCreator   = "Vibe Coding App"
	notAvailable      = "n/a"
)

// DocumentInfo is the PDF metadata derived from generation metadata.
type DocumentInfo struct {
	Title    string
	Subject  string
	Author   string
	Keywords string
	Creator  string
}

// NewDocumentInfo builds PDF metadata for meta, filling blanks with defaults.
func NewDocumentInfo(meta domain.GenerationMeta) DocumentInfo {
	or := func(s, fallback string) string {
		if s == "" {
			return fallback
		}
		return s
	}
	return DocumentInfo{
		Title: or(meta.Topic, DefaultTitleTopic) + " Carousel",
		Subject: fmt.Sprintf("Tone: %s; Style: %s; Version: %s",
			or(string(meta.Tone), notAvailable),
			or(string(meta.ImageStyle), notAvailable),
			or(meta.Version, notAvailable)),
		Author:   or(meta.Author, domain.ResultAuthor),
		Keywords: "carousel,ai," + meta.Topic,
		Creator:  DocumentCreator,
	}
}

// PNGFileName is the download name of a single exported slide.
func PNGFileName(slide domain.Slide) string {
	return slide.ID + ".png"
}

// PDFFileName is the download name of an exported carousel.
func PDFFileName(now time.Time) string {
	return "carousel-" + strconv.FormatInt(now.UnixMilli(), 10) + ".pdf"
}

// RenderPDF renders slides in order, one per 1080x1080 page, and writes the
// document to w. Slides are rendered one at a time so only a single canvas is
// held in memory.
func (r *Renderer) RenderPDF(ctx context.Context, slides []domain.Slide, meta domain.GenerationMeta, w io.Writer) error {
	if len(slides) == 0 {
		return ErrNoSlides
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: CanvasSize, Ht: CanvasSize},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	info := NewDocumentInfo(meta)
	doc.SetTitle(info.Title, true)
	doc.SetSubject(info.Subject, true)
	doc.SetAuthor(info.Author, true)
	doc.SetKeywords(info.Keywords, true)
	doc.SetCreator(info.Creator, true)

	imageOpts := fpdf.ImageOptions{ImageType: "JPEG"}
	var buf bytes.Buffer

	for i, slide := range slides {
		canvas, err := r.Render(ctx, slide)
		if err != nil {
			return fmt.Errorf("render slide %d: %w", i+1, err)
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("encode slide %d: %w", i+1, err)
		}

		name := "slide-" + strconv.Itoa(i)
		doc.AddPage()
		doc.RegisterImageOptionsReader(name, imageOpts, bytes.NewReader(buf.Bytes()))
		doc.ImageOptions(name, 0, 0, CanvasSize, CanvasSize, false, imageOpts, 0, "")
		if err := doc.Error(); err != nil {
			return fmt.Errorf("add slide %d: %w", i+1, err)
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
