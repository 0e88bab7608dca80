package domain

// Algorithm represents the authenticated encryption algorithm used for
// document payloads.
//
// Every supported algorithm provides Authenticated Encryption with Associated
// Data (AEAD), so a payload that fails tag verification yields no plaintext.
// Document encryption is pinned to AESGCM; the algorithm is still recorded on
// every payload so a future migration can introduce another cipher without a
// wire format change.
type Algorithm string

const (
	// AESGCM is AES-256-GCM: 256-bit key, 96-bit random nonce, 128-bit
	// authentication tag. Single-pass authenticated encryption with no
	// separate MAC step, hardware accelerated on modern CPUs.
	AESGCM Algorithm = "aes-256-gcm"

	// ChaCha20 is ChaCha20-Poly1305: same key, nonce and tag sizes as
	// AESGCM with a constant-time software implementation. Kept for
	// forward compatibility; not selected for new document payloads.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeyOrigin identifies where an encryption key's material came from.
type KeyOrigin string

const (
	// OriginLocal keys are drawn from the local CSPRNG and wrapped with a
	// master key loaded from the environment.
	OriginLocal KeyOrigin = "local"

	// OriginManaged keys are drawn locally but placed in the custody of an
	// external managed key service, which wraps and unwraps the material.
	OriginManaged KeyOrigin = "managed"
)

const (
	// KeySize is the required key material length in bytes (256 bits).
	KeySize = 32

	// NonceSize is the AEAD nonce length in bytes (96 bits).
	NonceSize = 12

	// TagSize is the AEAD authentication tag length in bytes (128 bits).
	TagSize = 16

	// MinSaltSize is the minimum salt length for key derivation.
	MinSaltSize = 16

	// MinPBKDF2Iterations is the minimum accepted PBKDF2 iteration count.
	MinPBKDF2Iterations = 100_000
)
