package vnav

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vango-dev/vnav/internal/config"
)

// staticFiles serves files from a directory ahead of the router. Requests
// for files that do not exist fall through to page rendering.
type staticFiles struct {
	fsys         fs.FS
	prefix       string
	cacheControl string
}

func newStaticFiles(dir, prefix, cacheControl string) *staticFiles {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &staticFiles{
		fsys:         os.DirFS(dir),
		prefix:       prefix,
		cacheControl: cacheControl,
	}
}

func (s *staticFiles) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		rel, ok := s.relPath(r.URL.Path)
		if !ok || !s.serve(w, r, rel) {
			next.ServeHTTP(w, r)
		}
	})
}

// relPath maps a request path to a path inside the static directory.
// Traversal, absolute paths, and backslashes are rejected.
func (s *staticFiles) relPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" || strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	if strings.HasPrefix(rel, "/") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

// serve writes the file at rel and reports whether it existed.
func (s *staticFiles) serve(w http.ResponseWriter, r *http.Request, rel string) bool {
	f, err := s.fsys.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		return false
	}

	s.applyCacheHeaders(w, rel)
	http.ServeContent(w, r, rel, info.ModTime(), rs)
	return true
}

func (s *staticFiles) applyCacheHeaders(w http.ResponseWriter, rel string) {
	switch s.cacheControl {
	case config.CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case config.CacheControlProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// as in "app.a1b2c3d4.css".
func isFingerprinted(rel string) bool {
	parts := strings.Split(path.Base(rel), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
