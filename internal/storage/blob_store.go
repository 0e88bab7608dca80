package storage

import (
	"context"
	"fmt"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Register blob storage drivers.
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// BlobStore implements ObjectStore over a gocloud.dev blob bucket.
// Supported URL schemes: s3://, gs://, azblob://, file://, mem://.
type BlobStore struct {
	bucket  *blob.Bucket
	timeout time.Duration
}

// OpenBlobStore opens the bucket at bucketURL. Every store call is bounded
// by timeout; on expiry the call fails with ErrTimeout and no side effect
// is assumed.
func OpenBlobStore(ctx context.Context, bucketURL string, timeout time.Duration) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return NewBlobStore(bucket, timeout), nil
}

// NewBlobStore wraps an already-open bucket. Used by tests with memblob.
func NewBlobStore(bucket *blob.Bucket, timeout time.Duration) *BlobStore {
	return &BlobStore{bucket: bucket, timeout: timeout}
}

// Close releases the underlying bucket.
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

// Put writes data under key with the given content type and metadata tags.
func (s *BlobStore) Put(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
	metadata map[string]string,
) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := &blob.WriterOptions{
		ContentType: contentType,
		Metadata:    metadata,
	}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return mapError(err, "failed to write object")
	}
	return nil
}

// Get reads the full object at key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, mapError(err, "failed to read object")
	}
	return data, nil
}

// Delete removes the object at key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.bucket.Delete(ctx, key); err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

// Stat returns object metadata without reading the payload.
func (s *BlobStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &ObjectInfo{
		Key:         key,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		ETag:        attrs.ETag,
		ModTime:     attrs.ModTime,
		Metadata:    attrs.Metadata,
	}, nil
}

// Copy duplicates srcKey to dstKey within the bucket.
func (s *BlobStore) Copy(ctx context.Context, dstKey, srcKey string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.bucket.Copy(ctx, dstKey, srcKey, nil); err != nil {
		return mapError(err, "failed to copy object")
	}
	return nil
}

// bound applies the store timeout when one is configured.
func (s *BlobStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// mapError translates gocloud error codes into the domain taxonomy.
func mapError(err error, message string) error {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return fmt.Errorf("%s: %w", message, apperrors.ErrNotFound)
	case gcerrors.DeadlineExceeded, gcerrors.Canceled:
		return fmt.Errorf("%s: %w", message, apperrors.ErrTimeout)
	default:
		return fmt.Errorf("%s: %w: %v", message, apperrors.ErrUnavailable, err)
	}
}
