package domain

import (
	"context"
	"io"
	"time"
)

// MediaStorage abstracts where uploaded media lives. Implemented by S3/MinIO
// in deployment and the local filesystem in development.
type MediaStorage interface {
	// UploadFile stores the object under key and returns its public URL.
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)

	// DeleteFile removes the object. Deleting a missing key is not an error
	// for every backend, callers must not rely on it.
	DeleteFile(ctx context.Context, key string) error

	// GetPresignedURL returns a temporary URL for viewing the object.
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)

	// GetPresignedDownloadURL returns a temporary URL that forces a download
	// with the given filename.
	GetPresignedDownloadURL(ctx context.Context, key string, filename string, expiration time.Duration) (string, error)

	// GetKeyFromURL recovers the storage key from a public URL.
	GetKeyFromURL(url string) (string, error)
}
