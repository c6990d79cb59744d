// Command carousel generates a carousel through a running server, applies
// optional reorder and edit steps, prints the deck and exports it locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/carousel-studio/internal/platform/logger"
)

func main() {
	var opts options
	flag.StringVar(&opts.Server, "server", "http://localhost:3000", "base URL of the carousel server")
	flag.StringVar(&opts.Topic, "topic", "", "carousel topic (at least 3 characters)")
	flag.StringVar(&opts.Tone, "tone", "", "professional, friendly, bold or educational")
	flag.StringVar(&opts.ImageStyle, "style", "", "photo, illustration or abstract")
	flag.IntVar(&opts.Count, "count", 5, "number of slides, 1 to 12")
	flag.StringVar(&opts.Move, "move", "", "reorder as FROM:TO slide positions, e.g. 3:1")
	flag.IntVar(&opts.Select, "select", 1, "slide position to edit and export as PNG")
	flag.StringVar(&opts.Edit.Headline, "headline", "", "replace the selected slide's headline")
	flag.StringVar(&opts.Edit.Body, "body", "", "replace the selected slide's body")
	flag.StringVar(&opts.Edit.CTA, "cta", "", "replace the selected slide's call to action")
	flag.StringVar(&opts.Edit.ImageURL, "image", "", "replace the selected slide's image URL")
	flag.StringVar(&opts.Format, "format", "", "export format: png (selected slide) or pdf (whole deck)")
	flag.StringVar(&opts.Out, "out", "", "export file path (default: <slide id>.png or carousel-<ms>.pdf)")
	flag.StringVar(&opts.PrefsPath, "prefs", defaultPrefsPath(), "preferences file")
	flag.StringVar(&opts.Mode, "mode", "", "remember the display mode: dark or light")
	flag.StringVar(&opts.LogLevel, "log-level", "warn", "log level")
	flag.Parse()

	log := logger.Setup(logger.Config{Level: opts.LogLevel, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, log); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		stop()
		os.Exit(1)
	}
}
