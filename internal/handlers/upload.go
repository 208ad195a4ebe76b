package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"marketplace/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadsPath is the URL prefix uploaded images are served under.
const UploadsPath = "/uploads"

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// ImageStore saves uploaded product images on the local filesystem.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates the upload directory if needed.
func NewImageStore(dir string, maxMB int) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &ImageStore{dir: dir, maxBytes: int64(maxMB) << 20}, nil
}

// Dir returns the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Receive returns the "image" file of a multipart request after checking
// its type and size. Nothing is written; header is nil when the request
// carries no image.
func (s *ImageStore) Receive(c *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]

	if !strings.HasPrefix(header.Header.Get(fiber.HeaderContentType), "image/") {
		return nil, apperrors.Validation("Only image files are allowed")
	}
	if header.Size > s.maxBytes {
		return nil, apperrors.Validation(fmt.Sprintf("Image cannot exceed %d MB", s.maxBytes>>20))
	}
	return header, nil
}

// Store writes a received image under a fresh name and returns its public
// URL and file name.
func (s *ImageStore) Store(c *fiber.Ctx, header *multipart.FileHeader) (url, name string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		ext = ""
	}
	name = uuid.New().String() + ext
	if err := c.SaveFile(header, filepath.Join(s.dir, name)); err != nil {
		return "", "", apperrors.Internal("Failed to store image", err)
	}
	return c.BaseURL() + UploadsPath + "/" + name, name, nil
}

// Discard removes a stored image.
func (s *ImageStore) Discard(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}
