package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a stored object.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage holds key material as opaque objects addressed by key.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	// A missing key yields an error wrapping ErrNotFound.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// List returns information about all objects with keys starting with the given prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
