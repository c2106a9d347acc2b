// Package storage uploads generated assets (QR images, avatars) to an
// object store behind a small interface so handlers stay independent of the
// backend.
package storage

import "context"

// Uploader stores a blob under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
