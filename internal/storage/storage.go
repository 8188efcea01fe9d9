package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ArchiveStorage defines the interface for the durable snapshot mirror.
// Cascade and lifecycle operations write a JSON snapshot of the mutated plan
// tree here after the local mutation commits; a mirror failure is logged by
// the caller and never rolls the mutation back.
type ArchiveStorage interface {
	// PutSnapshot uploads a snapshot document under the given object key.
	PutSnapshot(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for retrieving a snapshot directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes a snapshot from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
