package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoUseCase "github.com/keeplegacy/docvault/internal/crypto/usecase"
)

// RunCreateKey creates the initial document encryption key from the given origin.
// Should only be run once during initial system setup. Local-origin keys are wrapped
// with the active master key from the MASTER_KEYS environment variable; managed-origin
// keys are placed in the custody of the configured key service.
//
// Requirements: Database must be migrated. For local origin, MASTER_KEYS and
// ACTIVE_MASTER_KEY_ID must be set. For managed origin, KMS_KEY_URI must be set.
func RunCreateKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	originStr string,
) error {
	logger.Info("creating new encryption key", slog.String("origin", originStr))

	origin, err := parseKeyOrigin(originStr)
	if err != nil {
		return err
	}

	key, err := keyUseCase.Create(ctx, origin)
	if err != nil {
		return fmt.Errorf("failed to create encryption key: %w", err)
	}
	defer key.Close()

	logger.Info("encryption key created successfully",
		slog.String("key_version", key.Version()),
		slog.String("origin", string(key.Origin)),
		slog.String("algorithm", string(key.Algorithm)),
	)

	return nil
}
