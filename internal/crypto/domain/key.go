package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EncryptionKey is a 256-bit symmetric document encryption key.
//
// Plaintext material lives only in process memory (the Material field) and in
// the custody of the wrapping authority: local-origin keys are wrapped with an
// environment-loaded master key, managed-origin keys are wrapped by the
// external managed key service. Only the wrapped form is ever persisted.
//
// Superseded keys are not deleted. They stay resident in the key chain and in
// storage so documents written under them remain decryptable until an explicit
// rewrap moves those documents to the successor key.
type EncryptionKey struct {
	ID        uuid.UUID
	Origin    KeyOrigin
	Algorithm Algorithm

	// Material is the plaintext 32-byte key. Never persisted, never logged.
	Material []byte

	// WrappedMaterial is the encrypted form of Material, safe to persist.
	WrappedMaterial []byte

	// WrapNonce is the nonce used when wrapping with a local master key.
	// Empty for managed-origin keys: the key service embeds its own.
	WrapNonce []byte

	// MasterKeyID identifies the master key that wrapped a local-origin key.
	// Empty for managed-origin keys.
	MasterKeyID string

	IsActive     bool
	CreatedAt    time.Time
	SupersededAt *time.Time
}

// Version is the string form of the key ID recorded on every payload this
// key produces, and on every document record encrypted under it.
func (k *EncryptionKey) Version() string {
	return k.ID.String()
}

// Close zeroes the plaintext material.
func (k *EncryptionKey) Close() {
	Zero(k.Material)
	k.Material = nil
}

// KeyChain holds unwrapped encryption keys for the process lifetime, indexed
// by key version. One key is active and encrypts new documents; superseded
// keys remain resolvable so older payloads can still be decrypted.
//
// Thread safety: backed by sync.Map for concurrent request handlers.
type KeyChain struct {
	activeVersion string
	keys          sync.Map
	mu            sync.Mutex
}

// NewKeyChain creates an empty key chain.
func NewKeyChain() *KeyChain {
	return &KeyChain{}
}

// ActiveVersion returns the version of the key used for new encryptions.
func (c *KeyChain) ActiveVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeVersion
}

// Active returns the key used for new encryptions.
func (c *KeyChain) Active() (*EncryptionKey, bool) {
	return c.Get(c.ActiveVersion())
}

// Get retrieves a key by version. Used during decryption to resolve the key
// recorded on a payload, including superseded keys.
func (c *KeyChain) Get(version string) (*EncryptionKey, bool) {
	if key, ok := c.keys.Load(version); ok {
		return key.(*EncryptionKey), true
	}
	return nil, false
}

// Add places a key in the chain. If active is true the key becomes the
// encryption key for new documents; any previous active key stays resolvable.
func (c *KeyChain) Add(key *EncryptionKey, active bool) {
	c.keys.Store(key.Version(), key)
	if active {
		c.mu.Lock()
		c.activeVersion = key.Version()
		c.mu.Unlock()
	}
}

// Close zeroes all resident key material and empties the chain.
func (c *KeyChain) Close() {
	c.keys.Range(func(k, v any) bool {
		v.(*EncryptionKey).Close()
		c.keys.Delete(k)
		return true
	})
	c.mu.Lock()
	c.activeVersion = ""
	c.mu.Unlock()
}
