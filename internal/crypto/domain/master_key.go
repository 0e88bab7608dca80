package domain

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
)

// MasterKey wraps local-origin encryption keys so their material can be
// persisted. Master keys never leave the environment they were loaded from;
// only keys wrapped by them are stored.
//
// Fields:
//   - ID: unique identifier (e.g., "prod-master-2026")
//   - Key: raw 32-byte master key material
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain manages a collection of master keys with one designated as
// active. Old master keys remain available to unwrap previously wrapped
// encryption keys while new keys are wrapped with the active one.
//
// Thread safety: backed by sync.Map for concurrent access.
type MasterKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveMasterKeyID returns the ID of the master key used to wrap new keys.
// Corresponds to the ACTIVE_MASTER_KEY_ID environment variable.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Get retrieves a master key by ID, used to unwrap encryption keys that were
// wrapped before a master key rotation.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}
	return nil, false
}

// Close zeroes all master key material and resets the chain. Call on
// shutdown so key bytes do not outlive the process's need for them.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(k, v any) bool {
		Zero(v.(*MasterKey).Key)
		m.keys.Delete(k)
		return true
	})
	m.activeID = ""
}

// LoadMasterKeyChainFromEnv loads master keys from environment variables.
//
// MASTER_KEYS is a comma-separated list of "id:base64key" entries; each key
// must decode to exactly 32 bytes. ACTIVE_MASTER_KEY_ID selects the key used
// to wrap new local-origin encryption keys. On any error the partially built
// chain is closed so no key material leaks from a failed initialization.
func LoadMasterKeyChainFromEnv() (*MasterKeyChain, error) {
	raw := os.Getenv("MASTER_KEYS")
	if raw == "" {
		return nil, ErrMasterKeysNotSet
	}

	active := os.Getenv("ACTIVE_MASTER_KEY_ID")
	if active == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	mkc := &MasterKeyChain{activeID: active}

	for _, part := range strings.Split(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			mkc.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}
		id := p[0]
		key, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			mkc.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}
		if len(key) != KeySize {
			Zero(key)
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be %d bytes, got %d",
				ErrInvalidKeyLength,
				id,
				KeySize,
				len(key),
			)
		}
		mkc.keys.Store(id, &MasterKey{ID: id, Key: key})
	}

	if _, ok := mkc.Get(active); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, active)
	}

	return mkc, nil
}
