package service

import (
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

// CipherEngineService implements CipherEngine on top of the AEAD factory.
//
// The engine is the only component that touches document plaintext together
// with key material. It records the producing key's version on every payload
// and additionally binds that version into the AEAD's associated data, so a
// payload whose stored key version has been altered fails tag verification
// even if an attacker controls the metadata.
type CipherEngineService struct {
	aeadManager AEADManager
}

// NewCipherEngine creates a CipherEngineService using the provided AEAD factory.
func NewCipherEngine(aeadManager AEADManager) *CipherEngineService {
	return &CipherEngineService{aeadManager: aeadManager}
}

// Encrypt encrypts plaintext under the supplied key with a fresh random
// nonce. Fails with ErrInvalidKeyLength if the key material is not exactly
// 256 bits. The returned payload carries ciphertext, nonce, the 128-bit
// authentication tag and the key version.
func (e *CipherEngineService) Encrypt(
	plaintext []byte,
	key *cryptoDomain.EncryptionKey,
) (*cryptoDomain.EncryptedPayload, error) {
	if len(key.Material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeyLength
	}

	aead, err := e.aeadManager.CreateCipher(key.Material, key.Algorithm)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, []byte(key.Version()))
	if err != nil {
		return nil, err
	}

	// Seal appends the 16-byte tag to the ciphertext; split it back out so
	// the stored payload is explicit about its layout.
	tagStart := len(sealed) - cryptoDomain.TagSize
	return &cryptoDomain.EncryptedPayload{
		Ciphertext: sealed[:tagStart],
		Nonce:      nonce,
		AuthTag:    sealed[tagStart:],
		KeyVersion: key.Version(),
		Algorithm:  key.Algorithm,
	}, nil
}

// Decrypt verifies and decrypts a payload under the supplied key.
//
// Fails with ErrKeyMismatch if the payload's key version does not correspond
// to the supplied key, and with ErrAuthenticationFailed if tag verification
// fails for any reason (wrong key, corrupted ciphertext, nonce or tag, or
// tampering). Neither failure returns any plaintext, partial or otherwise.
func (e *CipherEngineService) Decrypt(
	payload *cryptoDomain.EncryptedPayload,
	key *cryptoDomain.EncryptionKey,
) ([]byte, error) {
	if len(key.Material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeyLength
	}
	if payload.KeyVersion != key.Version() {
		return nil, cryptoDomain.ErrKeyMismatch
	}
	if len(payload.Nonce) != cryptoDomain.NonceSize || len(payload.AuthTag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	aead, err := e.aeadManager.CreateCipher(key.Material, payload.Algorithm)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(payload.Ciphertext)+cryptoDomain.TagSize)
	sealed = append(sealed, payload.Ciphertext...)
	sealed = append(sealed, payload.AuthTag...)

	plaintext, err := aead.Decrypt(sealed, payload.Nonce, []byte(payload.KeyVersion))
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
