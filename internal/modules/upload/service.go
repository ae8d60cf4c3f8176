package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxFileSize = 50 * 1024 * 1024 // 50 MB

// AllowedMimeTypes defines which file types are accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// Service validates an incoming file, hands the bytes to Storage and records
// the result: sniff MIME -> store -> record in DB -> return ID + URL.
type Service struct {
	repo    Repository
	storage Storage
}

func NewService(repo Repository, storage Storage) *Service {
	return &Service{repo: repo, storage: storage}
}

// SaveImage stores a profile image and returns its public URL.
func (s *Service) SaveImage(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (string, error) {
	up, err := s.Save(ctx, userID, fileHeader)
	if err != nil {
		return "", err
	}
	return up.FileURL, nil
}

func (s *Service) Save(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*Upload, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from the first 512 bytes, then rewind.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}
	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	now := time.Now()
	id := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	key := fmt.Sprintf("%d/%02d/%02d/%s_%s%s",
		now.Year(), now.Month(), now.Day(), id, sanitizeName(fileHeader.Filename), ext)

	fileURL, err := s.storage.Put(ctx, key, mimeType, file, fileHeader.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	up := &Upload{
		ID:           id,
		UserID:       userID,
		OriginalName: fileHeader.Filename,
		Key:          key,
		FileURL:      fileURL,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, up); err != nil {
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	return up, nil
}

// GetByID returns upload metadata by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser returns all uploads for a user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Upload, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
