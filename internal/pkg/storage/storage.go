package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("invalid file path")

// FileStorage stores uploaded files such as company logos.
type FileStorage interface {
	// Save writes the content under key and returns the stored key.
	Save(ctx context.Context, file io.Reader, key string) (string, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// URL returns the public URL of key.
	URL(key string) string
}
