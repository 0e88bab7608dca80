package usecase

import (
	"context"
	"time"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	"github.com/keeplegacy/docvault/internal/metrics"
)

// auditTrailWithMetrics decorates AuditTrailUseCase with metrics instrumentation.
type auditTrailWithMetrics struct {
	next    AuditTrailUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditTrailUseCaseWithMetrics wraps an AuditTrailUseCase with metrics recording.
func NewAuditTrailUseCaseWithMetrics(useCase AuditTrailUseCase, m metrics.BusinessMetrics) AuditTrailUseCase {
	return &auditTrailWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (a *auditTrailWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", operation, status)
	a.metrics.RecordDuration(ctx, "audit", operation, time.Since(start), status)
}

// Record records metrics for audit entry writes.
func (a *auditTrailWithMetrics) Record(
	ctx context.Context,
	entry *auditDomain.AuditLogEntry,
) (*auditDomain.AuditLogEntry, error) {
	start := time.Now()
	recorded, err := a.next.Record(ctx, entry)
	a.record(ctx, "audit_record", start, err)
	return recorded, err
}

// Query records metrics for compliance queries.
func (a *auditTrailWithMetrics) Query(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) (*QueryResult, error) {
	start := time.Now()
	result, err := a.next.Query(ctx, filter, offset, limit)
	a.record(ctx, "audit_query", start, err)
	return result, err
}

// VerifyChain records metrics for chain verification runs.
func (a *auditTrailWithMetrics) VerifyChain(ctx context.Context) (int64, error) {
	start := time.Now()
	verified, err := a.next.VerifyChain(ctx)
	a.record(ctx, "audit_verify_chain", start, err)
	return verified, err
}

// CleanExpired records metrics for retention cleanup runs.
func (a *auditTrailWithMetrics) CleanExpired(ctx context.Context, dryRun bool) (int64, error) {
	start := time.Now()
	removed, err := a.next.CleanExpired(ctx, dryRun)
	a.record(ctx, "audit_clean_expired", start, err)
	return removed, err
}
