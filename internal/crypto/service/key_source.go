package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// LocalKeySource generates key material from the local CSPRNG and wraps it
// with the active master key from the environment-loaded master key chain.
type LocalKeySource struct {
	masterKeyChain *cryptoDomain.MasterKeyChain
	aeadManager    AEADManager
}

// NewLocalKeySource creates a LocalKeySource.
func NewLocalKeySource(
	masterKeyChain *cryptoDomain.MasterKeyChain,
	aeadManager AEADManager,
) *LocalKeySource {
	return &LocalKeySource{
		masterKeyChain: masterKeyChain,
		aeadManager:    aeadManager,
	}
}

// Origin returns OriginLocal.
func (s *LocalKeySource) Origin() cryptoDomain.KeyOrigin {
	return cryptoDomain.OriginLocal
}

// GenerateKey draws 256 bits from crypto/rand and wraps them with the active
// master key. The wrapped form and the wrap nonce are what persistence sees;
// the plaintext material stays in the returned key only.
func (s *LocalKeySource) GenerateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	masterKey, ok := s.masterKeyChain.Get(s.masterKeyChain.ActiveMasterKeyID())
	if !ok {
		cryptoDomain.Zero(material)
		return nil, cryptoDomain.ErrActiveMasterKeyNotFound
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, cryptoDomain.AESGCM)
	if err != nil {
		cryptoDomain.Zero(material)
		return nil, err
	}

	wrapped, nonce, err := aead.Encrypt(material, []byte(masterKey.ID))
	if err != nil {
		cryptoDomain.Zero(material)
		return nil, fmt.Errorf("failed to wrap key material: %w", err)
	}

	return &cryptoDomain.EncryptionKey{
		ID:              uuid.Must(uuid.NewV7()),
		Origin:          cryptoDomain.OriginLocal,
		Algorithm:       cryptoDomain.AESGCM,
		Material:        material,
		WrappedMaterial: wrapped,
		WrapNonce:       nonce,
		MasterKeyID:     masterKey.ID,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// UnwrapKey recovers plaintext material using the master key recorded on the
// persisted key. Master keys from before a rotation stay in the chain, so
// keys wrapped under them remain recoverable.
func (s *LocalKeySource) UnwrapKey(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	masterKey, ok := s.masterKeyChain.Get(key.MasterKeyID)
	if !ok {
		return fmt.Errorf("%w: master key %s", cryptoDomain.ErrKeyNotFound, key.MasterKeyID)
	}

	aead, err := s.aeadManager.CreateCipher(masterKey.Key, cryptoDomain.AESGCM)
	if err != nil {
		return err
	}

	material, err := aead.Decrypt(key.WrappedMaterial, key.WrapNonce, []byte(masterKey.ID))
	if err != nil {
		return cryptoDomain.ErrAuthenticationFailed
	}

	key.Material = material
	return nil
}

// ManagedKeySource places key material in the custody of an external managed
// key service: material is wrapped by the service on creation and unwrapped
// by it on load. Every call is bounded by a timeout and retried with
// exponential backoff up to a fixed budget; persistent failure surfaces as
// ErrKeyServiceUnavailable and blocks the dependent write. There is no
// silent fallback to an unencrypted path.
type ManagedKeySource struct {
	keeper     Keeper
	timeout    time.Duration
	maxRetries uint64
}

// NewManagedKeySource creates a ManagedKeySource backed by the given keeper.
func NewManagedKeySource(keeper Keeper, timeout time.Duration, maxRetries int) *ManagedKeySource {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ManagedKeySource{
		keeper:     keeper,
		timeout:    timeout,
		maxRetries: uint64(maxRetries),
	}
}

// Origin returns OriginManaged.
func (s *ManagedKeySource) Origin() cryptoDomain.KeyOrigin {
	return cryptoDomain.OriginManaged
}

// GenerateKey draws 256 bits locally and hands them to the key service for
// wrapping. The service's ciphertext is the only persisted form.
func (s *ManagedKeySource) GenerateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	wrapped, err := s.withRetry(ctx, func(callCtx context.Context) ([]byte, error) {
		return s.keeper.Encrypt(callCtx, material)
	})
	if err != nil {
		cryptoDomain.Zero(material)
		return nil, err
	}

	return &cryptoDomain.EncryptionKey{
		ID:              uuid.Must(uuid.NewV7()),
		Origin:          cryptoDomain.OriginManaged,
		Algorithm:       cryptoDomain.AESGCM,
		Material:        material,
		WrappedMaterial: wrapped,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// UnwrapKey asks the key service to unwrap the persisted material.
func (s *ManagedKeySource) UnwrapKey(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	material, err := s.withRetry(ctx, func(callCtx context.Context) ([]byte, error) {
		return s.keeper.Decrypt(callCtx, key.WrappedMaterial)
	})
	if err != nil {
		return err
	}
	if len(material) != cryptoDomain.KeySize {
		cryptoDomain.Zero(material)
		return cryptoDomain.ErrInvalidKeyLength
	}

	key.Material = material
	return nil
}

// withRetry runs a key service call under the configured timeout, retrying
// with exponential backoff. Exhausted retries map to ErrKeyServiceUnavailable.
func (s *ManagedKeySource) withRetry(
	ctx context.Context,
	call func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	var result []byte

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := call(callCtx)
		if err != nil {
			return err
		}
		result = out
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyServiceUnavailable, err.Error())
	}
	return result, nil
}
