// Package service provides audit trail cryptography and classification:
// hash-chained HMAC signatures over entries and a compliance classifier
// that flags PII and PHI content.
package service

import (
	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
)

// AuditSigner signs and verifies audit log entries. Signatures chain: each
// entry is signed together with the previous entry's signature, so removing
// or reordering entries breaks verification.
type AuditSigner interface {
	Sign(signingKey []byte, entry *auditDomain.AuditLogEntry, prevSignature []byte) ([]byte, error)
	Verify(signingKey []byte, entry *auditDomain.AuditLogEntry) error
}

// ComplianceClassifier inspects an entry and derives its compliance flags.
type ComplianceClassifier interface {
	Classify(entry *auditDomain.AuditLogEntry) auditDomain.ComplianceFlags
}
