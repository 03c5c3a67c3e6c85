package web

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

var staticExtensions = map[string]bool{
	".html":        true,
	".js":          true,
	".css":         true,
	".json":        true,
	".png":         true,
	".jpg":         true,
	".jpeg":        true,
	".gif":         true,
	".woff":        true,
	".woff2":       true,
	".ttf":         true,
	".svg":         true,
	".ico":         true,
	".webmanifest": true,
	".enc":         true,
}

// Static serves files under dir. Only known asset extensions are served and
// any path that escapes dir is refused. A request for a directory serves
// its index.html.
func Static(dir string) http.Handler {
	root := http.Dir(dir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			MethodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "\\") {
			WriteError(w, http.StatusBadRequest, "invalid path")
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if !staticExtensions[strings.ToLower(filepath.Ext(name))] {
			WriteError(w, http.StatusNotFound, "not found")
			return
		}

		f, err := root.Open(name)
		if err != nil {
			WriteError(w, http.StatusNotFound, "not found")
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			WriteError(w, http.StatusNotFound, "not found")
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// File serves a single file regardless of the request path.
func File(filename string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			MethodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		http.ServeFile(w, r, filename)
	})
}
