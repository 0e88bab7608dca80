package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

func memStore(t *testing.T) *BlobStore {
	t.Helper()
	store := NewBlobStore(memblob.OpenBucket(nil), time.Second)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBlobStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)

	data := []byte("encrypted payload bytes")
	meta := map[string]string{"classification": "legal"}
	require.NoError(t, store.Put(ctx, "docs/u1/d1", data, "application/octet-stream", meta))

	got, err := store.Get(ctx, "docs/u1/d1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBlobStore_GetMissing(t *testing.T) {
	store := memStore(t)

	_, err := store.Get(context.Background(), "docs/none")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBlobStore_Stat(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)

	data := []byte("payload")
	require.NoError(t, store.Put(ctx, "docs/u1/d2", data, "application/octet-stream", nil))

	info, err := store.Stat(ctx, "docs/u1/d2")
	require.NoError(t, err)
	assert.Equal(t, "docs/u1/d2", info.Key)
	assert.Equal(t, int64(len(data)), info.Size)

	_, err = store.Stat(ctx, "docs/none")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBlobStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)

	require.NoError(t, store.Put(ctx, "docs/u1/d3", []byte("x"), "application/octet-stream", nil))
	require.NoError(t, store.Delete(ctx, "docs/u1/d3"))

	_, err := store.Get(ctx, "docs/u1/d3")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "docs/u1/d3"), apperrors.ErrNotFound)
}

func TestBlobStore_Copy(t *testing.T) {
	ctx := context.Background()
	store := memStore(t)

	data := []byte("to archive")
	require.NoError(t, store.Put(ctx, "docs/u1/d4", data, "application/octet-stream", nil))
	require.NoError(t, store.Copy(ctx, "archive/u1/d4", "docs/u1/d4"))

	got, err := store.Get(ctx, "archive/u1/d4")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Source is untouched by the copy itself.
	_, err = store.Get(ctx, "docs/u1/d4")
	assert.NoError(t, err)
}
