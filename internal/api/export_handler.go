package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/carousel-studio/internal/api/shared"
	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/export"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
)

// Exporter renders slides to downloadable files. *export.Renderer implements it.
type Exporter interface {
	RenderPNG(ctx context.Context, slide domain.Slide, w io.Writer) error
	RenderPDF(ctx context.Context, slides []domain.Slide, meta domain.GenerationMeta, w io.Writer) error
}

// ExportSlide is a slide as edited by the client.
type ExportSlide struct {
	ID       string `json:"id" validate:"required,max=200"`
	Headline string `json:"headline" validate:"max=500"`
	Body     string `json:"body" validate:"max=2000"`
	CTA      string `json:"cta" validate:"max=500"`
	ImageURL string `json:"imageUrl" validate:"omitempty,max=2048,url"`
}

func (s ExportSlide) slide() domain.Slide {
	return domain.Slide{ID: s.ID, Headline: s.Headline, Body: s.Body, CTA: s.CTA, ImageURL: s.ImageURL}
}

// ExportPNGRequest is the body of POST /api/export/png.
type ExportPNGRequest struct {
	Slide *ExportSlide `json:"slide"`
}

// ExportPDFRequest is the body of POST /api/export/pdf.
type ExportPDFRequest struct {
	Slides []ExportSlide         `json:"slides" validate:"max=12,dive"`
	Meta   domain.GenerationMeta `json:"meta"`
}

// ExportHandler renders edited slides server-side.
type ExportHandler struct {
	exporter     Exporter
	maxBodyBytes int64
	now          func() time.Time
	logger       *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exporter Exporter, maxBodyBytes int64, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ExportHandler{
		exporter:     exporter,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
		logger:       logger.With("component", "export_handler"),
	}
}

// ExportPNG handles POST /api/export/png.
func (h *ExportHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	var req ExportPNGRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Slide == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgNoSelection)
		return
	}

	slide := req.Slide.slide()
	var buf bytes.Buffer
	if err := h.exporter.RenderPNG(r.Context(), slide, &buf); err != nil {
		respondWithMappedError(w, r, err)
		return
	}
	h.send(w, r, "image/png", export.PNGFileName(slide), buf.Bytes())
}

// ExportPDF handles POST /api/export/pdf.
func (h *ExportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	var req ExportPDFRequest
	if !h.decode(w, r, &req) {
		return
	}

	slides := make([]domain.Slide, len(req.Slides))
	for i, s := range req.Slides {
		slides[i] = s.slide()
	}

	var buf bytes.Buffer
	if err := h.exporter.RenderPDF(r.Context(), slides, req.Meta, &buf); err != nil {
		respondWithMappedError(w, r, err)
		return
	}
	h.send(w, r, "application/pdf", export.PDFFileName(h.now()), buf.Bytes())
}

// decode reads and validates the body, writing the error response itself.
func (h *ExportHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength > h.maxBodyBytes {
		shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, MsgPayloadTooLarge,
			fmt.Errorf("%w: declared %d bytes", shared.ErrPayloadTooLarge, r.ContentLength),
			shared.WithElevatedLogLevel())
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := shared.DecodeJSON(r, v); err != nil {
		respondWithMappedError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", shared.CacheNoStore)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("failed to write export", "error", err)
	}
}
