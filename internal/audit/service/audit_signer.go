package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
)

type auditSigner struct{}

// NewAuditSigner creates a new HMAC-based audit entry signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// active encryption key material, keeping encryption and signing usage apart.
// Info parameter: "audit-log-signing-v1" (versioned for future algorithm changes).
func (a *auditSigner) deriveSigningKey(keyMaterial []byte) ([]byte, error) {
	info := []byte("audit-log-signing-v1")
	hash := sha256.New
	hkdf := hkdf.New(hash, keyMaterial, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeEntry converts an audit entry to a canonical byte representation
// for signing. Uses length-prefixed encoding for variable-length fields to
// prevent ambiguity.
func (a *auditSigner) canonicalizeEntry(entry *auditDomain.AuditLogEntry) ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, entry.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.EventType))
	buf = appendLengthPrefixed(buf, []byte(entry.Severity))
	buf = appendLengthPrefixed(buf, []byte(entry.ActorID))

	if entry.ResourceID != nil {
		buf = appendLengthPrefixed(buf, entry.ResourceID[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}
	buf = appendLengthPrefixed(buf, []byte(entry.ResourceType))
	buf = appendLengthPrefixed(buf, []byte(entry.SourceIP))
	buf = appendLengthPrefixed(buf, []byte(entry.UserAgent))
	buf = appendLengthPrefixed(buf, []byte(entry.RequestID))

	if entry.Details != nil {
		detailBytes, err := auditDomain.MarshalDetails(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		buf = appendLengthPrefixed(buf, detailBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	flags := byte(0)
	if entry.Flags.ContainsPII {
		flags |= 1
	}
	if entry.Flags.ContainsPHI {
		flags |= 2
	}
	buf = append(buf, flags)
	for _, j := range entry.Flags.Jurisdictions {
		buf = appendLengthPrefixed(buf, []byte(j))
	}
	buf = appendLengthPrefixed(buf, []byte(entry.KeyVersion))

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(entry.Timestamp.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max (4GB) to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates an HMAC-SHA256 signature over the canonical entry chained
// with the previous entry's signature. prevSignature is nil for the first
// entry in the chain. Returns a 32-byte signature.
func (a *auditSigner) Sign(
	signingKey []byte,
	entry *auditDomain.AuditLogEntry,
	prevSignature []byte,
) ([]byte, error) {
	derived, err := a.deriveSigningKey(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(derived)

	canonical, err := a.canonicalizeEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize entry: %w", err)
	}

	mac := hmac.New(sha256.New, derived)
	mac.Write(canonical)
	mac.Write(prevSignature)
	signature := mac.Sum(nil)

	return signature, nil
}

// Verify checks the entry's stored signature against a recomputation from its
// fields and stored PrevSignature. Returns ErrEntryTampered on mismatch.
func (a *auditSigner) Verify(signingKey []byte, entry *auditDomain.AuditLogEntry) error {
	expectedSig, err := a.Sign(signingKey, entry, entry.PrevSignature)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(entry.Signature, expectedSig) {
		return auditDomain.ErrEntryTampered
	}

	return nil
}
