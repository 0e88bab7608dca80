// Package domain defines the compliance audit trail model: append-only
// entries, their classification flags, and the typed detail payloads
// attached to each event.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the security-relevant operation an entry records.
type EventType string

const (
	EventUpload       EventType = "upload"
	EventDownload     EventType = "download"
	EventDelete       EventType = "delete"
	EventArchive      EventType = "archive"
	EventAccessDenied EventType = "access_denied"
	EventKeyRotation  EventType = "key_rotation"
)

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventUpload, EventDownload, EventDelete, EventArchive, EventAccessDenied, EventKeyRotation:
		return true
	}
	return false
}

// Severity grades an entry for compliance review.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// SystemActor is the actor ID recorded for operations the platform itself
// initiates, such as the retention sweep.
const SystemActor = "system"

// Jurisdiction names a compliance regime an entry falls under.
type Jurisdiction string

const (
	JurisdictionPIPEDA Jurisdiction = "PIPEDA"
	JurisdictionHIPAA  Jurisdiction = "HIPAA"
)

// ComplianceFlags classify an entry for retention and reporting.
type ComplianceFlags struct {
	ContainsPII   bool           `json:"contains_pii"`
	ContainsPHI   bool           `json:"contains_phi"`
	Jurisdictions []Jurisdiction `json:"jurisdictions"`
}

// AuditLogEntry is one append-only record of a security-relevant operation.
//
// Entries are never mutated or deleted before RetentionExpiresAt; the audit
// retention window is fixed and independent of the retention window of the
// document an entry describes. Each entry carries an HMAC signature chained
// to the previous entry's signature so silent removal or alteration inside
// the window is detectable.
type AuditLogEntry struct {
	ID           uuid.UUID
	Timestamp    time.Time
	EventType    EventType
	Severity     Severity
	ActorID      string
	ResourceID   *uuid.UUID
	ResourceType string
	SourceIP     string
	UserAgent    string
	RequestID    string
	Details      Details
	Flags        ComplianceFlags

	// KeyVersion names the encryption key whose derived signing key produced
	// Signature, so entries remain verifiable across key rotations.
	KeyVersion    string
	Signature     []byte
	PrevSignature []byte

	RetentionExpiresAt time.Time
}
