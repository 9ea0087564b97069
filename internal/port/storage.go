package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	BucketExists(ctx context.Context, bucket string) error
}

// ArtifactStore keeps a copy of every extraction result and returns the key
// it was stored under.
type ArtifactStore interface {
	Save(ctx context.Context, requestID string, body io.Reader, size int64) (string, error)
	Ping(ctx context.Context) error
}

// ResultCache stores serialized organizer results by content key.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Scratch is a per-request working directory.
type Scratch interface {
	Dir() string
	Release() error
}

// Workspace hands out scratch directories.
type Workspace interface {
	Acquire(requestID string) (Scratch, error)
}
