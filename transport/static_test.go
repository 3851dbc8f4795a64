package transport

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
}

func TestStaticFiles(t *testing.T) {
	static := filepath.Join(t.TempDir(), "public")
	uploads := filepath.Join(static, "temp")
	writeFile(t, filepath.Join(static, "logo.txt"), "logo")
	writeFile(t, filepath.Join(static, "docs", "index.html"), "<h1>docs</h1>")
	writeFile(t, filepath.Join(static, "assets", "app.css"), "body{}")
	writeFile(t, filepath.Join(uploads, "3f2c-staged.png"), "png")

	h := StaticFiles(static, uploads)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/logo.txt", http.StatusOK, "logo"},
		{"/assets/app.css", http.StatusOK, "body{}"},
		{"/docs/", http.StatusOK, "<h1>docs</h1>"},
		{"/assets/", http.StatusNotFound, ""},
		{"/", http.StatusNotFound, ""},
		{"/temp/", http.StatusNotFound, ""},
		{"/temp", http.StatusNotFound, ""},
		{"/temp/3f2c-staged.png", http.StatusNotFound, ""},
		{"/missing.txt", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.URL.Path = tt.path

			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotContains(t, w.Body.String(), "3f2c-staged.png")
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestStaticFiles_HiddenOutsideRoot(t *testing.T) {
	root := t.TempDir()
	static := filepath.Join(root, "public")
	writeFile(t, filepath.Join(static, "logo.txt"), "logo")

	h := StaticFiles(static, filepath.Join(root, "tmp", "uploads"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logo.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, target string
		want        string
		wantOK      bool
	}{
		{"public", "public/temp", "/temp", true},
		{"public", "public", "/", true},
		{"public", "tmp/uploads", "", false},
		{"public", "publicity", "", false},
		{"public", "public/a/b", "/a/b", true},
	}

	for _, tt := range tests {
		got, ok := within(tt.dir, tt.target)
		assert.Equal(t, tt.wantOK, ok, tt.target)
		assert.Equal(t, tt.want, got, tt.target)
	}
}
