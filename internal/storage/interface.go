// Package storage provides the object store client for encrypted document
// payloads. The store is an external collaborator reached through a narrow
// put/get/delete/stat interface; only the document store calls it.
package storage

import (
	"context"
	"time"
)

// ObjectInfo is the metadata returned by Stat.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ETag        string
	ModTime     time.Time
	Metadata    map[string]string
}

// ObjectStore is the narrow surface the vault needs from blob storage.
// The store is assumed durable and strongly consistent after Put returns;
// a key is never exposed to readers before its Put completes.
type ObjectStore interface {
	// Put writes data under key. Overwrites are whole-object: readers see
	// either the fully-old or fully-new bytes, never a partial write.
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error

	// Get reads the full object at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error

	// Stat returns object metadata without reading the payload.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// Copy duplicates srcKey to dstKey within the store. Used to move
	// payloads into the archive namespace without a round trip.
	Copy(ctx context.Context, dstKey, srcKey string) error
}
