// Package storage declares blob persistence interfaces shared by the
// concrete backends.
package storage

import "context"

// BlobStore writes raw artifacts (fetched page markup) and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}
