package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// base64key:// keeper with a fixed 32-byte key, for tests only.
const testKeeperURI = "base64key://c21HYmptNzFOeGQxSWc1RlMwd2o5U2xiekFJcm5vbEM="

func TestLocalKeySource(t *testing.T) {
	ctx := context.Background()
	source := NewLocalKeySource(testMasterKeyChain(t), NewAEADManager())

	assert.Equal(t, cryptoDomain.OriginLocal, source.Origin())

	key, err := source.GenerateKey(ctx)
	require.NoError(t, err)

	t.Run("unwrap recovers the generated material", func(t *testing.T) {
		persisted := &cryptoDomain.EncryptionKey{
			ID:              key.ID,
			Origin:          key.Origin,
			Algorithm:       key.Algorithm,
			WrappedMaterial: key.WrappedMaterial,
			WrapNonce:       key.WrapNonce,
			MasterKeyID:     key.MasterKeyID,
		}

		require.NoError(t, source.UnwrapKey(ctx, persisted))
		assert.Equal(t, key.Material, persisted.Material)
	})

	t.Run("unwrap with unknown master key fails", func(t *testing.T) {
		persisted := &cryptoDomain.EncryptionKey{
			WrappedMaterial: key.WrappedMaterial,
			WrapNonce:       key.WrapNonce,
			MasterKeyID:     "rotated-away",
		}

		err := source.UnwrapKey(ctx, persisted)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})

	t.Run("unwrap with corrupted wrapped material fails closed", func(t *testing.T) {
		corrupted := make([]byte, len(key.WrappedMaterial))
		copy(corrupted, key.WrappedMaterial)
		corrupted[0] ^= 0x01

		persisted := &cryptoDomain.EncryptionKey{
			WrappedMaterial: corrupted,
			WrapNonce:       key.WrapNonce,
			MasterKeyID:     key.MasterKeyID,
		}

		err := source.UnwrapKey(ctx, persisted)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
		assert.Nil(t, persisted.Material)
	})
}

func TestManagedKeySource(t *testing.T) {
	ctx := context.Background()

	keeper, err := OpenKeeper(ctx, testKeeperURI)
	require.NoError(t, err)
	defer func() { _ = keeper.Close() }()

	source := NewManagedKeySource(keeper, time.Second, 2)
	assert.Equal(t, cryptoDomain.OriginManaged, source.Origin())

	t.Run("generate and unwrap round trip", func(t *testing.T) {
		key, err := source.GenerateKey(ctx)
		require.NoError(t, err)
		assert.Len(t, key.Material, cryptoDomain.KeySize)
		assert.NotEmpty(t, key.WrappedMaterial)
		assert.Empty(t, key.MasterKeyID)

		persisted := &cryptoDomain.EncryptionKey{
			ID:              key.ID,
			Origin:          key.Origin,
			WrappedMaterial: key.WrappedMaterial,
		}
		require.NoError(t, source.UnwrapKey(ctx, persisted))
		assert.Equal(t, key.Material, persisted.Material)
	})

	t.Run("unavailable service surfaces ErrKeyServiceUnavailable", func(t *testing.T) {
		failing := NewManagedKeySource(&failingKeeper{}, 50*time.Millisecond, 1)

		_, err := failing.GenerateKey(ctx)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyServiceUnavailable)
	})

	t.Run("retries before giving up", func(t *testing.T) {
		flaky := &flakyKeeper{failures: 2, inner: keeper}
		retried := NewManagedKeySource(flaky, time.Second, 4)

		key, err := retried.GenerateKey(ctx)
		require.NoError(t, err)
		assert.Len(t, key.Material, cryptoDomain.KeySize)
		assert.Equal(t, 3, flaky.calls)
	})
}

// failingKeeper always errors, standing in for an unreachable key service.
type failingKeeper struct{}

func (f *failingKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (f *failingKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return nil, errors.New("connection refused")
}

// flakyKeeper fails a fixed number of calls before delegating.
type flakyKeeper struct {
	failures int
	calls    int
	inner    Keeper
}

func (f *flakyKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient failure")
	}
	return f.inner.Encrypt(ctx, plaintext)
}

func (f *flakyKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient failure")
	}
	return f.inner.Decrypt(ctx, ciphertext)
}
