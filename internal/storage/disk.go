// Package storage persists uploaded images on local disk.
package storage

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"drawerbox/internal/config"
	"drawerbox/internal/models"

	"github.com/google/uuid"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const defaultUploadDir = "/tmp/drawerbox/uploads"

// extensionByFormat maps the decoded image format to the stored file
// extension. Formats outside this map are rejected.
var extensionByFormat = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// ImageStore writes uploaded images under a single directory with
// uuid-derived names, so a stored path never collides and never echoes
// caller-controlled input.
type ImageStore struct {
	dir      string
	maxBytes int64
}

func NewImageStore(cfg *config.Config) (*ImageStore, error) {
	dir := cfg.UploadDir
	if dir == "" {
		dir = defaultUploadDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &ImageStore{
		dir:      dir,
		maxBytes: int64(cfg.MaxUploadSizeMB) * 1024 * 1024,
	}, nil
}

// Save validates and stores the uploaded bytes, returning the stored
// filename relative to the upload directory. The content is sniffed and
// decoded; the client-supplied filename only survives in logs.
func (s *ImageStore) Save(content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !strings.HasPrefix(detected, "image/") {
		return "", models.NewValidationError("Invalid image type")
	}
	_, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	ext, ok := extensionByFormat[format]
	if !ok {
		return "", models.NewValidationError("Unsupported image format")
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return name, nil
}

// Remove deletes a stored file by the name Save returned. Removing a file
// that is already gone is not an error.
func (s *ImageStore) Remove(name string) error {
	// Stored names are flat uuids; anything path-like is not ours.
	if name == "" || name != filepath.Base(name) {
		return models.NewValidationError("Invalid stored image name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

// Path resolves a stored name to its absolute path for serving.
func (s *ImageStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", models.NewValidationError("Invalid stored image name")
	}
	return filepath.Join(s.dir, name), nil
}
