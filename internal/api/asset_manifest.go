package api

import (
	"net/http"

	"github.com/phrazzld/carousel-studio/internal/api/shared"
)

// AssetCacheName versions the browser's offline app-shell cache.
const AssetCacheName = "carousel-ai-v4"

// AssetManifest lists the app-shell files the browser client caches.
type AssetManifest struct {
	CacheName string   `json:"cacheName"`
	Assets    []string `json:"assets"`
}

// DefaultAssetManifest returns the app shell of the bundled client.
func DefaultAssetManifest() AssetManifest {
	return AssetManifest{
		CacheName: AssetCacheName,
		Assets: []string{
			"/",
			"/index.html",
			"/styles.css",
			"/app.js",
			"/manifest.json",
			"/icons/icon-192.svg",
			"/icons/icon-512.svg",
		},
	}
}

// AssetManifestHandler serves m as JSON.
func AssetManifestHandler(m AssetManifest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, m)
	}
}
