package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/carousel-studio/internal/carousel"
	"github.com/phrazzld/carousel-studio/internal/client"
	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/export"
	"github.com/phrazzld/carousel-studio/internal/preferences"
)

// Export formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

var (
	errInvalidMove   = errors.New("move must be FROM:TO slide positions")
	errInvalidFormat = errors.New("format must be png or pdf")
	errInvalidMode   = errors.New("mode must be dark or light")
)

// options are the parsed command-line flags.
type options struct {
	Server     string
	Topic      string
	Tone       string
	ImageStyle string
	Count      int
	Move       string
	Select     int
	Edit       carousel.SlideEdit
	Format     string
	Out        string
	PrefsPath  string
	Mode       string
	LogLevel   string

	// PollInterval and PollTimeout default to the client's values.
	PollInterval time.Duration
	PollTimeout  time.Duration
	// Images overrides the exporter's image fetcher.
	Images export.ImageFetcher
	// Now defaults to time.Now.
	Now func() time.Time
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "carousel-studio", "preferences.yaml")
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	mode, err := applyPreferences(opts)
	if err != nil {
		return err
	}
	if mode != "" {
		fmt.Fprintf(out, "Mode: %s\n", mode)
	}

	api, err := client.New(opts.Server, client.WithLogger(logger))
	if err != nil {
		return err
	}

	accepted, err := api.Generate(ctx, client.GenerateRequest{
		Topic:      opts.Topic,
		Tone:       opts.Tone,
		ImageStyle: opts.ImageStyle,
		Count:      opts.Count,
	})
	if err != nil {
		return fmt.Errorf("queue generation: %w", err)
	}
	fmt.Fprintf(out, "Queued %s\n", accepted.JobID)

	poller := client.NewPoller(api, client.PollerConfig{
		Interval: opts.PollInterval,
		Timeout:  opts.PollTimeout,
	}, logger)
	last := -1
	result, err := poller.Poll(ctx, accepted.JobID, func(progress int, status domain.JobStatus) {
		if progress != last {
			last = progress
			fmt.Fprintf(out, "Generating text + images (%s)... %d%%\n", status, progress)
		}
	})
	if err != nil {
		return err
	}

	deck := carousel.NewDeck()
	deck.Load(result)

	if err := applyMove(deck, opts.Move); err != nil {
		return err
	}
	selected, err := selectPosition(deck, opts.Select)
	if err != nil {
		return err
	}
	if err := applyEdit(deck, selected, opts.Edit); err != nil {
		return err
	}

	if err := deck.Render(out); err != nil {
		return err
	}

	if opts.Format == "" {
		return nil
	}
	path, err := exportDeck(ctx, deck, opts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %s\n", path)
	return nil
}

// errorMessage shows the client's user-facing text for API and polling
// failures and the raw error for everything else.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.Is(err, client.ErrJobFailed) ||
		errors.Is(err, client.ErrPollTimeout) ||
		errors.Is(err, client.ErrStatusUnavailable) ||
		errors.As(err, &apiErr) {
		return client.UserMessage(err)
	}
	return err.Error()
}

func validateOptions(opts options) error {
	switch opts.Format {
	case "", FormatPNG, FormatPDF:
	default:
		return errInvalidFormat
	}
	switch opts.Mode {
	case "", "dark", "light":
	default:
		return errInvalidMode
	}
	return nil
}

// applyPreferences stores a new mode, or reports the remembered one.
func applyPreferences(opts options) (string, error) {
	if strings.TrimSpace(opts.PrefsPath) == "" {
		return opts.Mode, nil
	}
	prefs, err := preferences.Open(opts.PrefsPath)
	if err != nil {
		return "", fmt.Errorf("open preferences: %w", err)
	}
	if opts.Mode != "" {
		if err := prefs.Set(preferences.KeyMode, opts.Mode); err != nil {
			return "", fmt.Errorf("save preferences: %w", err)
		}
	}
	return prefs.GetOr(preferences.KeyMode, "dark"), nil
}

// parseMove converts "FROM:TO" into 1-based positions.
func parseMove(move string) (int, int, error) {
	from, to, ok := strings.Cut(move, ":")
	if !ok {
		return 0, 0, errInvalidMove
	}
	src, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, errInvalidMove
	}
	dst, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, errInvalidMove
	}
	return src, dst, nil
}

func applyMove(deck *carousel.Deck, move string) error {
	if move == "" {
		return nil
	}
	src, dst, err := parseMove(move)
	if err != nil {
		return err
	}
	slides := deck.Slides()
	if src < 1 || dst < 1 || src > len(slides) || dst > len(slides) {
		return fmt.Errorf("%w: positions must be between 1 and %d", errInvalidMove, len(slides))
	}
	deck.Move(slides[src-1].ID, slides[dst-1].ID)
	return nil
}

func selectPosition(deck *carousel.Deck, pos int) (domain.Slide, error) {
	slides := deck.Slides()
	if pos < 1 || pos > len(slides) {
		return domain.Slide{}, carousel.ErrNoSelection
	}
	if err := deck.Select(slides[pos-1].ID); err != nil {
		return domain.Slide{}, err
	}
	return slides[pos-1], nil
}

// applyEdit overlays the non-empty flag values on the selected slide.
func applyEdit(deck *carousel.Deck, slide domain.Slide, edit carousel.SlideEdit) error {
	if edit == (carousel.SlideEdit{}) {
		return nil
	}
	merged := carousel.SlideEdit{
		Headline: firstNonEmpty(edit.Headline, slide.Headline),
		Body:     firstNonEmpty(edit.Body, slide.Body),
		CTA:      firstNonEmpty(edit.CTA, slide.CTA),
		ImageURL: firstNonEmpty(edit.ImageURL, slide.ImageURL),
	}
	return deck.Edit(slide.ID, merged)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func exportDeck(ctx context.Context, deck *carousel.Deck, opts options, logger *slog.Logger) (string, error) {
	images := opts.Images
	if images == nil {
		images = export.NewHTTPImageFetcher()
	}
	renderer, err := export.NewRenderer(export.Options{Images: images, Logger: logger})
	if err != nil {
		return "", err
	}

	var (
		buf  bytes.Buffer
		name string
	)
	switch opts.Format {
	case FormatPNG:
		slide, ok := deck.Selected()
		if !ok {
			return "", carousel.ErrNoSelection
		}
		if err := renderer.RenderPNG(ctx, slide, &buf); err != nil {
			return "", err
		}
		name = export.PNGFileName(slide)
	case FormatPDF:
		if err := renderer.RenderPDF(ctx, deck.Slides(), deck.Meta(), &buf); err != nil {
			return "", err
		}
		name = export.PDFFileName(opts.Now())
	}

	path := opts.Out
	if path == "" {
		path = name
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
