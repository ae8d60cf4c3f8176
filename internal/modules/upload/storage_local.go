package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes files under baseDir and serves them from staticBase
// via the router's static route. Used in dev and tests.
type LocalStorage struct {
	baseDir    string
	staticBase string
}

func NewLocalStorage(baseDir, staticBase string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, staticBase: staticBase}
}

func (s *LocalStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + strings.TrimPrefix(key, "/"), nil
}
