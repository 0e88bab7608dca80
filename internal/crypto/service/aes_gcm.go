package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// AES-GCM provides authenticated encryption in a single pass, combining AES
// confidentiality with GMAC authenticity. There is no separate MAC step, which
// eliminates the padding-oracle class of bugs entirely.
//
// Security properties:
//   - 256-bit key
//   - 12-byte nonce (96 bits), randomly generated per encryption
//   - 16-byte authentication tag (128 bits), appended to the ciphertext
//
// Nonce uniqueness per key is the critical invariant: the nonce is drawn from
// crypto/rand on every Encrypt call and is never derived from plaintext or
// from counter state shared across processes.
//
// Thread safety: the cipher instance is stateless and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance. The key must be
// exactly 32 bytes; anything else fails with ErrInvalidKeyLength.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with a fresh random 12-byte nonce and returns
// the ciphertext (tag appended) along with the nonce. The AAD is
// authenticated but not encrypted, binding the ciphertext to its context
// (the document vault binds payloads to their key version).
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt verifies the authentication tag and decrypts the ciphertext. On
// any verification failure no plaintext is returned and the error does not
// distinguish between a wrong key, corruption, or tampering.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
