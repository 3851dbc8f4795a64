package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const formMemory = 1 << 20

var ErrInvalidUpload = errors.New("invalid multipart upload")

// Stager writes the first file of each requested multipart field to Dir.
type Stager struct {
	Dir     string
	MaxSize int64
}

// Staged maps a form field to the local path of its staged file.
type Staged map[string]string

// Path returns the staged path of the first field present, or "".
func (s Staged) Path(fields ...string) string {
	for _, f := range fields {
		if p, ok := s[f]; ok {
			return p
		}
	}
	return ""
}

// Cleanup removes every staged file that is still on disk.
func (s Staged) Cleanup() {
	for _, p := range s {
		_ = os.Remove(p)
	}
}

// Stage parses the multipart body of r (bounded by MaxSize) and stages the
// given fields. Form values stay available through r.FormValue.
func (st *Stager) Stage(w http.ResponseWriter, r *http.Request, fields ...string) (Staged, error) {
	if st.MaxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, st.MaxSize)
	}
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	defer r.MultipartForm.RemoveAll()

	if err := os.MkdirAll(st.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	staged := Staged{}
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}

		p, err := st.save(headers[0])
		if err != nil {
			staged.Cleanup()
			return nil, fmt.Errorf("stage %s: %w", field, err)
		}
		staged[field] = p
	}

	return staged, nil
}

func (st *Stager) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	dst, err := os.Create(filepath.Join(st.Dir, uuid.NewString()+ext))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}

	return dst.Name(), nil
}
