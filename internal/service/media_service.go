package service

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultUploadDir       = "public/uploads"
	DefaultMaxUploadSizeMB = 5
)

type StoredImageInput struct {
	Filename string
	Content  []byte
}

// MediaService stores uploaded post images on disk and hands back the public
// URL path they are served under. Files are written verbatim, no re-encoding.
type MediaService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewMediaService(cfg *config.Config) *MediaService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadSizeMB
		}
	}

	return &MediaService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// StoreImage validates and writes an uploaded image, returning its public URL
// path ("/uploads/<name>"). The stored name combines a nanosecond timestamp
// with a short random suffix so concurrent uploads never collide.
func (s *MediaService) StoreImage(in StoredImageInput) (string, error) {
	if len(in.Content) == 0 {
		middleware.UploadsRejected.WithLabelValues("empty").Inc()
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		middleware.UploadsRejected.WithLabelValues("too_large").Inc()
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !strings.HasPrefix(detectedType, "image/") {
		middleware.UploadsRejected.WithLabelValues("bad_type").Inc()
		return "", models.NewValidationError("Only image uploads are allowed")
	}

	name := buildUploadName(in.Filename)
	path := filepath.Join(s.uploadDir, name)
	if err := writeUploadFile(path, in.Content); err != nil {
		return "", models.NewInternalError(err)
	}

	return "/uploads/" + name, nil
}

// RemoveStored deletes a previously stored upload given its public URL path.
// Best effort: a missing file is not an error.
func (s *MediaService) RemoveStored(publicPath string) {
	name := strings.TrimPrefix(publicPath, "/uploads/")
	if name == "" || name == publicPath || strings.Contains(name, "/") {
		return
	}
	_ = os.Remove(filepath.Join(s.uploadDir, name))
}

func buildUploadName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !isSafeExtension(ext) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}

func isSafeExtension(ext string) bool {
	if ext == "" || len(ext) > 8 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func writeUploadFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
