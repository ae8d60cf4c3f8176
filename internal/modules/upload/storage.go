package upload

import (
	"context"
	"io"
)

// Storage writes object bytes under a key and returns the public URL.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
}
