package httptransport

import (
	"net/http"
	"path"
	"strings"
)

// Static serves GET and HEAD requests from dir when a matching file exists
// and passes everything else to the next handler. Directories are served only
// when they contain an index.html.
func Static(dir string) func(http.Handler) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method == http.MethodGet || r.Method == http.MethodHead) && exists(root, r.URL.Path) {
				files.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func exists(root http.FileSystem, urlPath string) bool {
	name := path.Clean("/" + urlPath)
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	return exists(root, strings.TrimSuffix(name, "/")+"/index.html")
}
