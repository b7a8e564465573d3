package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves a pre-built single-page client from dir. Existing files
// are served as-is; any other GET falls back to index.html so client-side
// routes work on reload. Unknown API-looking paths and non-GET requests go
// to notFound.
func spaHandler(dir string, notFound http.HandlerFunc) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			notFound(w, r)
			return
		}
		if isAPIPath(r.URL.Path) {
			notFound(w, r)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		if _, err := os.Stat(index); err != nil {
			notFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

func isAPIPath(p string) bool {
	for _, prefix := range []string{"/api", "/auth/", "/flashcards"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
