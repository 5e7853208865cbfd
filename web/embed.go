// Package web embeds the page shell (dist/) and the tutorial content
// (content/): HTML fragments, stylesheets and the quiz catalog.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

// CatalogFile is the catalog path inside ContentFS.
const CatalogFile = "catalog.yaml"

//go:embed all:dist
var distFS embed.FS

//go:embed content
var contentFS embed.FS

// ContentFS returns the embedded tutorial content rooted at content/.
func ContentFS() fs.FS {
	sub, err := fs.Sub(contentFS, "content")
	if err != nil {
		panic(fmt.Sprintf("web: content sub filesystem: %v", err))
	}
	return sub
}

// ContentHandler serves fragments and stylesheets from fsys. Only the
// fragments/ and styles/ trees are exposed.
func ContentHandler(fsys fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if !strings.HasPrefix(path, "fragments/") && !strings.HasPrefix(path, "styles/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// SPAHandler returns an http.Handler that serves the embedded page shell.
// It serves static files from dist/, and falls back to index.html for
// any path that doesn't match a file.
func SPAHandler() http.Handler {
	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if f, err := subFS.Open(path); err == nil {
			if closeErr := f.Close(); closeErr != nil {
				slog.Debug("web: failed to close embedded file", "path", path, "error", closeErr)
			}
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
