package api

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
)

// IndexFile is served for "/" and for any path that does not name a file.
const IndexFile = "index.html"

// Cache-Control values for static assets.
const (
	CacheHTML   = "no-cache"
	CacheAssets = "public, max-age=3600"
)

var contentTypes = map[string]string{
	".html":        "text/html; charset=utf-8",
	".css":         "text/css; charset=utf-8",
	".js":          "application/javascript; charset=utf-8",
	".json":        "application/json; charset=utf-8",
	".svg":         "image/svg+xml",
	".png":         "image/png",
	".webmanifest": "application/manifest+json",
	".ico":         "image/x-icon",
}

// ContentType returns the Content-Type served for a file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// StaticHandler serves the browser client from a file tree with a
// single-page-app fallback to IndexFile.
type StaticHandler struct {
	root    fs.FS
	modTime time.Time
	logger  *slog.Logger
}

// NewStaticHandler creates a StaticHandler over root.
func NewStaticHandler(root fs.FS, logger *slog.Logger) *StaticHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticHandler{
		root:    root,
		modTime: time.Now(),
		logger:  logger.With("component", "static_handler"),
	}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := resolveStaticPath(r.URL.Path)
	if !ok {
		http.Error(w, MsgForbidden, http.StatusForbidden)
		return
	}

	data, served, err := h.read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("failed to read static file", "error", err, "path", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(served))
	if path.Ext(served) == ".html" {
		w.Header().Set("Cache-Control", CacheHTML)
	} else {
		w.Header().Set("Cache-Control", CacheAssets)
	}
	http.ServeContent(w, r, served, h.modTime, bytes.NewReader(data))
}

// read returns the named file, or IndexFile when name is missing or a directory.
func (h *StaticHandler) read(name string) ([]byte, string, error) {
	info, err := fs.Stat(h.root, name)
	if err == nil && !info.IsDir() {
		data, err := fs.ReadFile(h.root, name)
		return data, name, err
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}
	data, err := fs.ReadFile(h.root, IndexFile)
	return data, IndexFile, err
}

// resolveStaticPath maps a URL path to a name inside the public root. It
// reports false for paths that try to leave the root.
func resolveStaticPath(urlPath string) (string, bool) {
	if strings.ContainsAny(urlPath, "\\\x00") {
		return "", false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return IndexFile, true
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}
