// Package web embeds the browser client served by cmd/server when no public
// directory is configured.
package web

import (
	"embed"
	"io/fs"
)

//go:embed public
var files embed.FS

// Public returns the client's file tree rooted at index.html.
func Public() fs.FS {
	sub, err := fs.Sub(files, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
