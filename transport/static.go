package transport

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticFiles serves files under dir. Directories are never listed; a
// directory is served only through its index.html. Anything below one of the
// hidden directories (upload staging, for one) is reported as missing.
func StaticFiles(dir string, hidden ...string) http.Handler {
	fs := staticFS{root: http.Dir(dir)}
	for _, h := range hidden {
		if p, ok := within(dir, h); ok {
			fs.hidden = append(fs.hidden, p)
		}
	}
	return http.FileServer(fs)
}

type staticFS struct {
	root   http.FileSystem
	hidden []string
}

func (fs staticFS) Open(name string) (http.File, error) {
	name = path.Clean("/" + name)
	for _, h := range fs.hidden {
		if name == h || strings.HasPrefix(name, h+"/") {
			return nil, os.ErrNotExist
		}
	}

	f, err := fs.root.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := fs.root.Open(path.Join(name, "index.html"))
		if err != nil {
			_ = f.Close()
			return nil, os.ErrNotExist
		}
		_ = index.Close()
	}

	return f, nil
}

// within returns target as a slash separated path rooted at dir, if target
// lies inside dir.
func within(dir, target string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "/", true
	}
	return "/" + filepath.ToSlash(rel), true
}
