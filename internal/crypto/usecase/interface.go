// Package usecase implements the lifecycle of document encryption keys:
// creation, rotation, and the bootstrap that loads and unwraps persisted
// keys into the in-memory key chain.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// KeyRepository persists encryption keys in wrapped form only.
type KeyRepository interface {
	// Create inserts a new key record.
	Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error

	// Supersede marks a key inactive and records when it was superseded.
	Supersede(ctx context.Context, id uuid.UUID) error

	// List returns all keys, oldest first.
	List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error)
}

// KeyUseCase manages persisted encryption keys and the in-memory key chain.
type KeyUseCase interface {
	// Create generates a key from the configured origin, persists its
	// wrapped form and returns it with plaintext material populated.
	Create(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error)

	// Rotate supersedes the active key with a fresh one of the same origin.
	// Existing documents are not re-encrypted here.
	Rotate(ctx context.Context) (*cryptoDomain.EncryptionKey, error)

	// LoadChain loads every persisted key, unwraps each through its origin's
	// key source and returns a ready key chain. Superseded keys are included
	// so older documents stay decryptable.
	LoadChain(ctx context.Context) (*cryptoDomain.KeyChain, error)
}
