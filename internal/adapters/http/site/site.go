// Package site serves the static web app produced by `pele export web`.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Prefix is the mount point of the web app.
const Prefix = "/app"

// ErrNotDir is returned when the web directory is missing or not a directory.
var ErrNotDir = errors.New("web directory is not a directory")

// Validate reports whether dir can be served.
func Validate(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	return nil
}

// Register serves dir under Prefix. An empty dir registers nothing.
func Register(_ context.Context, r chi.Router, dir string) {
	if r == nil {
		panic("router is nil")
	}
	if dir == "" {
		return
	}
	files := http.StripPrefix(Prefix, http.FileServer(http.Dir(dir)))
	r.Get(Prefix, http.RedirectHandler(Prefix+"/", http.StatusMovedPermanently).ServeHTTP)
	r.Get(Prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		// Data files change on every export.
		if strings.EqualFold(path.Ext(req.URL.Path), ".json") {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, req)
	})
}
