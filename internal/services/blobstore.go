package services

import (
	"context"
	"io"
	"time"
)

// BlobStore is the object storage the CMS writes media into. gcp.BucketService
// satisfies it.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	PublicURL(key string) string
}
