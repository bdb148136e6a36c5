package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/somang-edu/eduportal-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// MIME types accepted for exam paper images.
var imageMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MIME types accepted for downloadable study materials.
var documentMIMETypes = map[string]string{
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// MediaService handles file upload operations.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveImage saves an uploaded exam paper image with a UUID filename and
// returns the relative URL path.
func (s *MediaService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.save(file, header, imageMIMETypes)
}

// SaveDocument saves an uploaded study material file with a UUID filename
// and returns the relative URL path.
func (s *MediaService) SaveDocument(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.save(file, header, documentMIMETypes)
}

func (s *MediaService) save(file multipart.File, header *multipart.FileHeader, allowed map[string]string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowed[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(mimeList(allowed), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + filename, nil
}

func mimeList(allowed map[string]string) []string {
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	return types
}
