// Package spa serves the single-page application's build output: hashed
// assets under /static and the entry document for every other path.
package spa

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrInvalidPath = errors.New("spa: invalid path")

type Server struct {
	buildDir string
}

func New(buildDir string) *Server {
	return &Server{
		buildDir: buildDir,
	}
}

// cleanPath resolves path under baseDir and rejects anything that escapes it.
func cleanPath(baseDir, path string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	full := filepath.Clean(filepath.Join(absBase, path))
	if full != absBase && !strings.HasPrefix(full, absBase+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// HandleStatic serves one asset from <build>/static. Misses, directories,
// and traversal attempts are all a plain 404.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "*")

	full, err := cleanPath(filepath.Join(s.buildDir, "static"), asset)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, full)
}

// HandleIndex serves the SPA entry document. Client-side routing owns the
// path, so every non-asset GET lands here.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ServeIndex(w, r, s.buildDir)
}

// ServeIndex writes the SPA entry document from the given build directory.
func ServeIndex(w http.ResponseWriter, r *http.Request, buildDir string) {
	index := filepath.Join(buildDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
