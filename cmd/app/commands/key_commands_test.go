package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

func TestRunGenerateMasterKey(t *testing.T) {
	t.Run("with-key-id", func(t *testing.T) {
		var out bytes.Buffer
		err := RunGenerateMasterKey(&out, "prod-master-key-2026")

		require.NoError(t, err)
		require.Contains(t, out.String(), `MASTER_KEYS="prod-master-key-2026:`)
		require.Contains(t, out.String(), `ACTIVE_MASTER_KEY_ID="prod-master-key-2026"`)
	})

	t.Run("default-key-id", func(t *testing.T) {
		var out bytes.Buffer
		err := RunGenerateMasterKey(&out, "")

		require.NoError(t, err)
		require.Contains(t, out.String(), `MASTER_KEYS="master-key-`)
	})
}

func TestRunCreateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("local-origin", func(t *testing.T) {
		useCase := &fakeKeyUseCase{
			createFn: func(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error) {
				require.Equal(t, cryptoDomain.OriginLocal, origin)
				return &cryptoDomain.EncryptionKey{
					ID:        uuid.New(),
					Origin:    origin,
					Algorithm: cryptoDomain.AESGCM,
					Material:  make([]byte, 32),
				}, nil
			},
		}

		err := RunCreateKey(ctx, useCase, logger, "local")
		require.NoError(t, err)
	})

	t.Run("invalid-origin", func(t *testing.T) {
		err := RunCreateKey(ctx, &fakeKeyUseCase{}, logger, "vault")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid key origin")
	})

	t.Run("use-case-error", func(t *testing.T) {
		useCase := &fakeKeyUseCase{
			createFn: func(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error) {
				return nil, errors.New("boom")
			},
		}

		err := RunCreateKey(ctx, useCase, logger, "managed")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create encryption key")
	})
}

func TestRunRotateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		useCase := &fakeKeyUseCase{
			rotateFn: func(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
				return &cryptoDomain.EncryptionKey{
					ID:        uuid.New(),
					Origin:    cryptoDomain.OriginLocal,
					Algorithm: cryptoDomain.AESGCM,
					Material:  make([]byte, 32),
				}, nil
			},
		}

		err := RunRotateKey(ctx, useCase, logger)
		require.NoError(t, err)
	})

	t.Run("use-case-error", func(t *testing.T) {
		useCase := &fakeKeyUseCase{
			rotateFn: func(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
				return nil, errors.New("no active key")
			},
		}

		err := RunRotateKey(ctx, useCase, logger)

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to rotate encryption key")
	})
}
