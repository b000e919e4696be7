package storage

import (
	"context"
	"time"
)

// FileStorage keeps generated exports. Objects are addressed by key.
type FileStorage interface {
	// UploadFile stores data under prefix with a generated name and returns the object key.
	UploadFile(ctx context.Context, data []byte, prefix, filename, contentType string) (string, error)

	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}
