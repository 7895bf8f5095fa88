// Package storage defines the binary object store that holds uploaded
// audio blobs. Blobs are keyed by the ID of their metadata record.
package storage

import (
	"context"
	"io"
)

// ObjectStorage is the minimal surface the API needs from a blob backend.
// Objects are written exactly once and never updated or deleted.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
