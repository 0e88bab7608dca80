// Package service provides the cryptographic services of the document vault:
// authenticated encryption of document payloads and the lifecycle of the
// symmetric keys that protect them.
package service

import (
	"context"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext
	// (tag appended) and the freshly generated nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// CipherEngine performs authenticated encryption and decryption of document
// bytes under a supplied encryption key. The engine generates a fresh random
// nonce for every encryption; callers can never supply one.
type CipherEngine interface {
	// Encrypt encrypts plaintext under key and returns a payload carrying
	// ciphertext, nonce, authentication tag and the key's version.
	Encrypt(plaintext []byte, key *cryptoDomain.EncryptionKey) (*cryptoDomain.EncryptedPayload, error)

	// Decrypt verifies and decrypts a payload. Fails with ErrKeyMismatch if
	// the payload was not produced by the supplied key, and with
	// ErrAuthenticationFailed if tag verification fails for any reason.
	Decrypt(payload *cryptoDomain.EncryptedPayload, key *cryptoDomain.EncryptionKey) ([]byte, error)
}

// KeySource is the capability interface behind key material custody. The
// concrete implementation (local master key vs managed key service) is
// selected at construction time, never by runtime type checks.
type KeySource interface {
	// Origin identifies the source family.
	Origin() cryptoDomain.KeyOrigin

	// GenerateKey draws fresh 256-bit key material and returns it in both
	// plaintext (for immediate use) and wrapped (for persistence) form.
	GenerateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error)

	// UnwrapKey recovers plaintext material for a persisted key, populating
	// key.Material in place.
	UnwrapKey(ctx context.Context, key *cryptoDomain.EncryptionKey) error
}

// KeyManager generates, derives and rotates document encryption keys.
type KeyManager interface {
	// GenerateKey creates a new key from the requested origin. Managed
	// origin failures are retried with exponential backoff; exhausted
	// retries surface ErrKeyServiceUnavailable unless local fallback is
	// explicitly permitted by policy.
	GenerateKey(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error)

	// DeriveKey derives a key from a passphrase using PBKDF2-SHA512.
	// Rejects iterations below 100,000 and salts shorter than 16 bytes.
	DeriveKey(passphrase string, salt []byte, iterations uint32) (*cryptoDomain.EncryptionKey, error)

	// RotateKey produces a successor key of the same origin family. It does
	// not re-encrypt existing documents; that is the document store's
	// explicitly triggered batch rewrap.
	RotateKey(ctx context.Context, current *cryptoDomain.EncryptionKey) (*cryptoDomain.EncryptionKey, error)

	// GenerateSalt returns length random bytes, rejecting lengths below 16.
	GenerateSalt(length int) ([]byte, error)
}
