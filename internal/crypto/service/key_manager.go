package service

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// KeyManagerService implements KeyManager over a set of key sources.
//
// The source for each origin family is injected at construction time. The
// managed source is allowed to be absent in deployments that only use local
// keys; requesting a managed key then fails with ErrKeyServiceUnavailable.
// Local fallback on managed-service failure happens only when the deployment
// policy explicitly enables it.
type KeyManagerService struct {
	sources         map[cryptoDomain.KeyOrigin]KeySource
	fallbackToLocal bool
	logger          *slog.Logger
}

// NewKeyManager creates a KeyManagerService from the given sources.
func NewKeyManager(sources []KeySource, fallbackToLocal bool, logger *slog.Logger) *KeyManagerService {
	byOrigin := make(map[cryptoDomain.KeyOrigin]KeySource, len(sources))
	for _, s := range sources {
		byOrigin[s.Origin()] = s
	}
	return &KeyManagerService{
		sources:         byOrigin,
		fallbackToLocal: fallbackToLocal,
		logger:          logger,
	}
}

// GenerateKey creates a new 256-bit key from the requested origin family.
//
// Managed-service failures have already been retried with backoff inside the
// source; if they persist, the error blocks the dependent write unless
// policy permits falling back to a local key. The fallback is logged so the
// origin downgrade is visible in operations.
func (km *KeyManagerService) GenerateKey(
	ctx context.Context,
	origin cryptoDomain.KeyOrigin,
) (*cryptoDomain.EncryptionKey, error) {
	source, ok := km.sources[origin]
	if !ok {
		return nil, fmt.Errorf("%w: no %s key source configured",
			cryptoDomain.ErrKeyServiceUnavailable, origin)
	}

	key, err := source.GenerateKey(ctx)
	if err == nil {
		return key, nil
	}

	if origin == cryptoDomain.OriginManaged && km.fallbackToLocal {
		local, localOK := km.sources[cryptoDomain.OriginLocal]
		if localOK {
			km.logger.Warn("managed key service unavailable, falling back to local origin",
				slog.String("error", err.Error()),
			)
			return local.GenerateKey(ctx)
		}
	}

	return nil, err
}

// DeriveKey derives a 256-bit key from a passphrase using PBKDF2 with
// SHA-512. Rejects salts shorter than 16 bytes with ErrSaltTooShort and
// iteration counts below 100,000 with ErrWeakParameters. Derived keys are
// never persisted; they exist for passphrase-protected contexts only.
func (km *KeyManagerService) DeriveKey(
	passphrase string,
	salt []byte,
	iterations uint32,
) (*cryptoDomain.EncryptionKey, error) {
	if len(salt) < cryptoDomain.MinSaltSize {
		return nil, cryptoDomain.ErrSaltTooShort
	}
	if iterations < cryptoDomain.MinPBKDF2Iterations {
		return nil, cryptoDomain.ErrWeakParameters
	}

	material := pbkdf2.Key([]byte(passphrase), salt, int(iterations), cryptoDomain.KeySize, sha512.New)

	return &cryptoDomain.EncryptionKey{
		ID:        uuid.Must(uuid.NewV7()),
		Origin:    cryptoDomain.OriginLocal,
		Algorithm: cryptoDomain.AESGCM,
		Material:  material,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RotateKey produces a successor key of the same origin family as current.
//
// Rotation deliberately does not re-encrypt existing documents: eager
// re-encryption would make rotation an unbounded-latency operation. The
// superseded key stays resolvable until the document store's batch rewrap
// has moved every document to the successor.
func (km *KeyManagerService) RotateKey(
	ctx context.Context,
	current *cryptoDomain.EncryptionKey,
) (*cryptoDomain.EncryptionKey, error) {
	successor, err := km.GenerateKey(ctx, current.Origin)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	current.IsActive = false
	current.SupersededAt = &now
	successor.IsActive = true

	return successor, nil
}

// GenerateSalt returns length cryptographically random bytes for key
// derivation. Lengths below 16 bytes fail with ErrSaltTooShort.
func (km *KeyManagerService) GenerateSalt(length int) ([]byte, error) {
	if length < cryptoDomain.MinSaltSize {
		return nil, cryptoDomain.ErrSaltTooShort
	}

	salt := make([]byte, length)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
