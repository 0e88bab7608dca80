// Package usecase implements business logic orchestration for the audit trail:
// signed append-only recording, compliance queries, chain verification, and
// retention cleanup.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
)

// AuditLogRepository defines the persistence contract for audit entries.
// There is no update operation and deletion covers expired rows only.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error
	List(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) ([]*auditDomain.AuditLogEntry, error)
	Count(ctx context.Context, filter auditDomain.QueryFilter) (int64, error)
	OldestTimestamp(ctx context.Context, filter auditDomain.QueryFilter) (*time.Time, error)
	ListChain(ctx context.Context, offset, limit int) ([]*auditDomain.AuditLogEntry, error)
	GetLastSignature(ctx context.Context) ([]byte, error)
	CountExpired(ctx context.Context, before time.Time) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// QueryResult is one page of audit entries with the compliance posture of
// everything the filter matched, not just the returned page.
type QueryResult struct {
	Entries []*auditDomain.AuditLogEntry
	Total   int64
	Summary auditDomain.ComplianceSummary
}

// AuditTrailUseCase provides audit trail operations.
type AuditTrailUseCase interface {
	// Record validates, classifies, signs, and persists an audit entry.
	// The caller fills the event fields; Record assigns identity, timestamp,
	// retention, compliance flags, and the chained signature.
	Record(ctx context.Context, entry *auditDomain.AuditLogEntry) (*auditDomain.AuditLogEntry, error)

	// Query returns one page of matching entries with totals and a
	// compliance summary over the whole match set.
	Query(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) (*QueryResult, error)

	// VerifyChain walks the whole trail oldest-first, checking every
	// signature and every chain link. Returns the number of verified entries.
	VerifyChain(ctx context.Context) (int64, error)

	// CleanExpired removes entries past the audit retention window. With
	// dryRun it only counts what would be removed.
	CleanExpired(ctx context.Context, dryRun bool) (int64, error)
}
