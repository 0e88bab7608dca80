package domain

import (
	"github.com/keeplegacy/docvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard sentinels from internal/errors
// so callers can classify failures (validation vs integrity vs dependency)
// without inspecting error strings.
var (
	// ErrInvalidKeyLength indicates key material is not exactly 32 bytes.
	ErrInvalidKeyLength = errors.Wrap(errors.ErrInvalidInput, "invalid key length")

	// ErrAuthenticationFailed indicates AEAD tag verification failed.
	//
	// This can mean a wrong key, corrupted ciphertext, a corrupted nonce or
	// tag, or deliberate tampering. The cause is intentionally not
	// distinguished and no partial plaintext is ever returned.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrIntegrity, "authentication failed")

	// ErrKeyMismatch indicates a payload's key version does not correspond
	// to the supplied decryption key.
	ErrKeyMismatch = errors.Wrap(errors.ErrIntegrity, "key mismatch")

	// ErrWeakParameters indicates key derivation parameters fall below the
	// minimum accepted strength (iterations < 100,000).
	ErrWeakParameters = errors.Wrap(errors.ErrInvalidInput, "weak derivation parameters")

	// ErrSaltTooShort indicates a derivation salt shorter than 16 bytes.
	ErrSaltTooShort = errors.Wrap(errors.ErrInvalidInput, "salt too short")

	// ErrKeyServiceUnavailable indicates the managed key service failed
	// after the bounded retry budget was exhausted. The dependent write is
	// blocked: there is no silent fallback to an unencrypted path.
	ErrKeyServiceUnavailable = errors.Wrap(errors.ErrUnavailable, "key service unavailable")

	// ErrKeyNotFound indicates the key chain holds no key for the
	// requested version.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "encryption key not found")

	// ErrUnsupportedAlgorithm indicates an unknown AEAD algorithm.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrMasterKeysNotSet indicates the MASTER_KEYS environment variable is missing.
	ErrMasterKeysNotSet = errors.Wrap(errors.ErrInvalidInput, "MASTER_KEYS not set")

	// ErrActiveMasterKeyIDNotSet indicates ACTIVE_MASTER_KEY_ID is missing.
	ErrActiveMasterKeyIDNotSet = errors.Wrap(errors.ErrInvalidInput, "ACTIVE_MASTER_KEY_ID not set")

	// ErrInvalidMasterKeysFormat indicates a malformed MASTER_KEYS entry.
	ErrInvalidMasterKeysFormat = errors.Wrap(errors.ErrInvalidInput, "invalid master keys format")

	// ErrInvalidMasterKeyBase64 indicates master key material that is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrActiveMasterKeyNotFound indicates ACTIVE_MASTER_KEY_ID names an unknown key.
	ErrActiveMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "active master key not found")
)
