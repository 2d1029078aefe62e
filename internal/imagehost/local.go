package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the server exposes the upload directory.
const URLPrefix = "/uploads/"

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

// Local keeps images in a directory served by the API itself. Used in
// development and when no Cloudinary account is configured.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local image dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (h *Local) Upload(ctx context.Context, r io.Reader, filename string) (Uploaded, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return Uploaded{}, fmt.Errorf("unsupported image type %q", ext)
	}

	id := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(h.Dir, id), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return Uploaded{}, err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return Uploaded{}, err
	}
	if err := f.Close(); err != nil {
		return Uploaded{}, err
	}

	return Uploaded{URL: h.BaseURL + URLPrefix + id, PublicID: id}, nil
}

func (h *Local) Delete(ctx context.Context, publicID string) error {
	if publicID == "" || publicID != filepath.Base(publicID) {
		return fmt.Errorf("invalid image id %q", publicID)
	}
	err := os.Remove(filepath.Join(h.Dir, publicID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (h *Local) Owns(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, h.BaseURL+URLPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
