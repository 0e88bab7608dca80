package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoUseCase "github.com/keeplegacy/docvault/internal/crypto/usecase"
)

// RunRotateKey supersedes the active encryption key with a fresh one of the
// same origin. Existing documents stay on the superseded key and remain
// decryptable; run rewrap-documents afterwards to move them to the new key.
//
// Requirements: Database must be migrated with an active key present.
func RunRotateKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
) error {
	logger.Info("rotating encryption key")

	key, err := keyUseCase.Rotate(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate encryption key: %w", err)
	}
	defer key.Close()

	logger.Info("encryption key rotated successfully",
		slog.String("new_key_version", key.Version()),
		slog.String("origin", string(key.Origin)),
		slog.String("algorithm", string(key.Algorithm)),
	)
	logger.Info("run rewrap-documents to move existing documents to the new key")

	return nil
}
