package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

// DefaultMaxImageBytes caps the size of a fetched slide image.
const DefaultMaxImageBytes int64 = 10 << 20

// ImageFetcher loads the image behind a slide's image URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// ImageFetcherFunc adapts a function to ImageFetcher.
type ImageFetcherFunc func(ctx context.Context, url string) (image.Image, error)

// Fetch implements ImageFetcher.
func (f ImageFetcherFunc) Fetch(ctx context.Context, url string) (image.Image, error) {
	return f(ctx, url)
}

// ErrHostNotAllowed is returned for image URLs outside the allowed hosts.
var ErrHostNotAllowed = errors.New("image host not allowed")

// HTTPImageFetcher downloads and decodes images over HTTP, following redirects.
type HTTPImageFetcher struct {
	Client   *http.Client
	MaxBytes int64
	// AllowedHosts restricts the hosts images may be loaded from, including
	// redirect targets. A host matches itself and its subdomains. Empty
	// allows any host.
	AllowedHosts []string
}

// NewHTTPImageFetcher returns a fetcher with a bounded timeout and body size.
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{
		Client:   &http.Client{Timeout: 15 * time.Second},
		MaxBytes: DefaultMaxImageBytes,
	}
}

// Fetch implements ImageFetcher.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	if !f.allowed(req.URL.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, req.URL.Hostname())
	}
	if len(f.AllowedHosts) > 0 {
		restricted := *client
		restricted.CheckRedirect = func(next *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			if !f.allowed(next.URL.Hostname()) {
				return fmt.Errorf("%w: %s", ErrHostNotAllowed, next.URL.Hostname())
			}
			return nil
		}
		client = &restricted
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (f *HTTPImageFetcher) allowed(host string) bool {
	if len(f.AllowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, h := range f.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return true
		}
	}
	return false
}
