// Package artifact persists the JSON output of each extraction.
package artifact

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// Store writes extraction artifacts to object storage under
// <prefix>/<yyyy>/<mm>/<dd>/<request-id>.json.
type Store struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
	now     func() time.Time
}

// NewStore creates an artifact Store on top of storage.
func NewStore(storage port.ObjectStorage, bucket, prefix string) *Store {
	return &Store{storage: storage, bucket: bucket, prefix: prefix, now: time.Now}
}

// Key returns the object key for requestID at time t.
func (s *Store) Key(requestID string, t time.Time) string {
	t = t.UTC()
	return path.Join(s.prefix, t.Format("2006"), t.Format("01"), t.Format("02"), requestID+".json")
}

// Save uploads body and returns its key.
func (s *Store) Save(ctx context.Context, requestID string, body io.Reader, size int64) (string, error) {
	key := s.Key(requestID, s.now())
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        body,
		ContentType: "application/json",
		Size:        size,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrArtifactUpload, err)
	}
	return key, nil
}

// Ping checks the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.BucketExists(ctx, s.bucket)
}
