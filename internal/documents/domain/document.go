// Package domain defines the document model of the vault: classification,
// access levels, retention policy and the document record itself.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Classification is a document's sensitivity category. It drives both the
// access rules applied to the document and its retention window.
type Classification string

const (
	ClassificationPersonal  Classification = "personal"
	ClassificationFinancial Classification = "financial"
	ClassificationMedical   Classification = "medical"
	ClassificationLegal     Classification = "legal"
)

// Classifications lists every valid classification.
var Classifications = []Classification{
	ClassificationPersonal,
	ClassificationFinancial,
	ClassificationMedical,
	ClassificationLegal,
}

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationPersonal, ClassificationFinancial, ClassificationMedical, ClassificationLegal:
		return true
	}
	return false
}

// AccessLevel is the access granted to principals other than the owner.
// Owners and admins are unaffected by it.
type AccessLevel string

const (
	// AccessLevelPublic documents are readable by any authenticated principal.
	AccessLevelPublic AccessLevel = "public"
	AccessLevelRead   AccessLevel = "read"
	AccessLevelWrite  AccessLevel = "write"
	AccessLevelManage AccessLevel = "manage"
	AccessLevelAdmin  AccessLevel = "admin"
)

// Valid reports whether a is a known access level.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessLevelPublic, AccessLevelRead, AccessLevelWrite, AccessLevelManage, AccessLevelAdmin:
		return true
	}
	return false
}

// DocumentRecord is the logical document the platform manages.
//
// StorageKey is globally unique and immutable once assigned; an updated
// document gets a new record version with a new storage key under the same
// ID. Checksum is the SHA-256 of the plaintext content and is verified after
// every decrypt. RetentionExpiresAt is always at least CreatedAt plus the
// classification's retention window.
type DocumentRecord struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	FileName           string
	ContentType        string
	Classification     Classification
	AccessLevel        AccessLevel
	StorageKey         string
	KeyVersion         string
	Checksum           string
	SizeBytes          uint64
	Archived           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastAccessedAt     *time.Time
	RetentionExpiresAt time.Time
}

// RetentionPolicy maps classifications to their minimum retention windows.
// Document retention is independent of the fixed audit-log retention window.
type RetentionPolicy struct {
	windows map[Classification]time.Duration
}

// NewRetentionPolicy builds a policy from per-classification day counts.
func NewRetentionPolicy(personalDays, financialDays, medicalDays, legalDays int) *RetentionPolicy {
	day := 24 * time.Hour
	return &RetentionPolicy{
		windows: map[Classification]time.Duration{
			ClassificationPersonal:  time.Duration(personalDays) * day,
			ClassificationFinancial: time.Duration(financialDays) * day,
			ClassificationMedical:   time.Duration(medicalDays) * day,
			ClassificationLegal:     time.Duration(legalDays) * day,
		},
	}
}

// Window returns the retention window for a classification.
func (p *RetentionPolicy) Window(c Classification) (time.Duration, error) {
	w, ok := p.windows[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownClassification, c)
	}
	return w, nil
}

// ExpiresAt computes the retention deadline for a document created at the
// given time.
func (p *RetentionPolicy) ExpiresAt(c Classification, createdAt time.Time) (time.Time, error) {
	w, err := p.Window(c)
	if err != nil {
		return time.Time{}, err
	}
	return createdAt.Add(w), nil
}
