// Package storage abstracts where uploaded archives live. The server is
// stateless; the object store is the single source of truth for what is
// shared, and the sweeper turns object age into link expiry.
package storage

import (
	"context"
	"io"
	"time"
)

// KeyPrefix is where all uploaded archives live in the store. The sweeper
// only ever touches keys under it.
const KeyPrefix = "uploads/"

// ObjectInfo describes one stored archive.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the slice of a blob store the server needs.
type ObjectStore interface {
	// Put stores an object under key.
	Put(ctx context.Context, key string, body io.Reader, size int64) error

	// Exists reports whether key holds an object.
	Exists(ctx context.Context, key string) (bool, error)

	// SignedGetURL mints a time-limited public URL for key.
	SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Open streams the object at key. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// List enumerates objects under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys []string) error
}
