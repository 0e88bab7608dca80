package usecase

import (
	"context"
	"fmt"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	cryptoService "github.com/keeplegacy/docvault/internal/crypto/service"
	"github.com/keeplegacy/docvault/internal/database"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// keyUseCase implements KeyUseCase.
type keyUseCase struct {
	txManager  database.TxManager
	keyRepo    KeyRepository
	keyManager cryptoService.KeyManager
	sources    map[cryptoDomain.KeyOrigin]cryptoService.KeySource
}

// NewKeyUseCase creates a KeyUseCase with the provided dependencies.
func NewKeyUseCase(
	txManager database.TxManager,
	keyRepo KeyRepository,
	keyManager cryptoService.KeyManager,
	sources []cryptoService.KeySource,
) KeyUseCase {
	byOrigin := make(map[cryptoDomain.KeyOrigin]cryptoService.KeySource, len(sources))
	for _, s := range sources {
		byOrigin[s.Origin()] = s
	}
	return &keyUseCase{
		txManager:  txManager,
		keyRepo:    keyRepo,
		keyManager: keyManager,
		sources:    byOrigin,
	}
}

// Create generates and persists a new active key.
func (u *keyUseCase) Create(
	ctx context.Context,
	origin cryptoDomain.KeyOrigin,
) (*cryptoDomain.EncryptionKey, error) {
	key, err := u.keyManager.GenerateKey(ctx, origin)
	if err != nil {
		return nil, err
	}
	key.IsActive = true

	if err := u.keyRepo.Create(ctx, key); err != nil {
		key.Close()
		return nil, apperrors.Wrap(err, "failed to persist encryption key")
	}

	return key, nil
}

// Rotate supersedes the currently active key with a fresh one of the same
// origin family. The supersede and the successor insert commit together so
// there is never a moment with zero or two active keys on disk.
func (u *keyUseCase) Rotate(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	keys, err := u.keyRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}

	var active *cryptoDomain.EncryptionKey
	for _, k := range keys {
		if k.IsActive {
			active = k
			break
		}
	}
	if active == nil {
		return nil, fmt.Errorf("%w: no active encryption key", apperrors.ErrNotFound)
	}

	successor, err := u.keyManager.RotateKey(ctx, active)
	if err != nil {
		return nil, err
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.keyRepo.Supersede(txCtx, active.ID); err != nil {
			return err
		}
		return u.keyRepo.Create(txCtx, successor)
	})
	if err != nil {
		successor.Close()
		return nil, apperrors.Wrap(err, "failed to persist key rotation")
	}

	return successor, nil
}

// LoadChain loads and unwraps all persisted keys into a key chain.
func (u *keyUseCase) LoadChain(ctx context.Context) (*cryptoDomain.KeyChain, error) {
	keys, err := u.keyRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}

	chain := cryptoDomain.NewKeyChain()
	for _, key := range keys {
		source, ok := u.sources[key.Origin]
		if !ok {
			chain.Close()
			return nil, fmt.Errorf("%w: no %s key source configured",
				cryptoDomain.ErrKeyServiceUnavailable, key.Origin)
		}
		if err := source.UnwrapKey(ctx, key); err != nil {
			chain.Close()
			return nil, apperrors.Wrap(err, fmt.Sprintf("failed to unwrap key %s", key.ID))
		}
		chain.Add(key, key.IsActive)
	}

	return chain, nil
}
