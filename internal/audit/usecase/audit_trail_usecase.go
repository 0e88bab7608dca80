package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	auditService "github.com/keeplegacy/docvault/internal/audit/service"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// verifyChainBatchSize bounds how many entries are loaded per page during
// chain verification.
const verifyChainBatchSize = 500

type auditTrailUseCase struct {
	auditLogRepo  AuditLogRepository
	signer        auditService.AuditSigner
	classifier    auditService.ComplianceClassifier
	keyChain      *cryptoDomain.KeyChain
	retentionDays int
	logger        *slog.Logger

	// mu serializes Record calls so concurrent writers cannot both chain
	// onto the same predecessor signature.
	mu sync.Mutex
}

// NewAuditTrailUseCase creates a new AuditTrailUseCase with the provided
// dependencies. retentionDays is the fixed audit retention window applied to
// every entry, independent of document retention.
func NewAuditTrailUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditSigner,
	classifier auditService.ComplianceClassifier,
	keyChain *cryptoDomain.KeyChain,
	retentionDays int,
	logger *slog.Logger,
) AuditTrailUseCase {
	return &auditTrailUseCase{
		auditLogRepo:  auditLogRepo,
		signer:        signer,
		classifier:    classifier,
		keyChain:      keyChain,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Record validates, classifies, signs, and persists an audit entry. Runs
// inside the caller's transaction when one is carried by ctx, so a failed
// document operation rolls its audit entry back with it.
func (a *auditTrailUseCase) Record(
	ctx context.Context,
	entry *auditDomain.AuditLogEntry,
) (*auditDomain.AuditLogEntry, error) {
	if !entry.EventType.Valid() {
		return nil, auditDomain.ErrUnknownEventType
	}
	if !entry.Severity.Valid() {
		return nil, auditDomain.ErrUnknownSeverity
	}
	if entry.ActorID == "" {
		return nil, auditDomain.ErrMissingActor
	}
	// System-initiated entries (sweeps, rewraps) have no originating request.
	if entry.SourceIP == "" && entry.ActorID != auditDomain.SystemActor {
		return nil, auditDomain.ErrMissingSourceIP
	}

	entry.ID = uuid.Must(uuid.NewV7())
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	// The databases store microsecond precision; the signature must cover
	// the timestamp exactly as it will be read back.
	entry.Timestamp = entry.Timestamp.Truncate(time.Microsecond)
	entry.RetentionExpiresAt = entry.Timestamp.AddDate(0, 0, a.retentionDays)
	entry.Flags = a.classifier.Classify(entry)

	signingKey, ok := a.keyChain.Active()
	if !ok {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyNotFound, "no active key for audit signing")
	}
	entry.KeyVersion = signingKey.Version()

	a.mu.Lock()
	defer a.mu.Unlock()

	prevSignature, err := a.auditLogRepo.GetLastSignature(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load previous audit signature")
	}

	signature, err := a.signer.Sign(signingKey.Material, entry, prevSignature)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign audit entry")
	}
	entry.Signature = signature
	entry.PrevSignature = prevSignature

	if err := a.auditLogRepo.Create(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, "failed to create audit entry")
	}

	a.logger.InfoContext(ctx, "audit entry recorded",
		slog.String("entry_id", entry.ID.String()),
		slog.String("event_type", string(entry.EventType)),
		slog.String("severity", string(entry.Severity)),
	)

	return entry, nil
}

// Query returns one page of entries matching the filter, the total match
// count, and a compliance summary computed over the whole match set.
func (a *auditTrailUseCase) Query(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) (*QueryResult, error) {
	entries, err := a.auditLogRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}

	total, err := a.auditLogRepo.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count audit entries")
	}

	summary, err := a.summarize(ctx, filter, total)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Entries: entries, Total: total, Summary: summary}, nil
}

func (a *auditTrailUseCase) summarize(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	total int64,
) (auditDomain.ComplianceSummary, error) {
	summary := auditDomain.ComplianceSummary{TotalEntries: total}
	if total == 0 {
		summary.Jurisdictions = []auditDomain.Jurisdiction{}
		return summary, nil
	}

	flagged := true

	piiFilter := filter
	piiFilter.ContainsPII = &flagged
	piiCount, err := a.auditLogRepo.Count(ctx, piiFilter)
	if err != nil {
		return summary, apperrors.Wrap(err, "failed to count PII audit entries")
	}
	summary.PIIEntries = piiCount

	phiFilter := filter
	phiFilter.ContainsPHI = &flagged
	phiCount, err := a.auditLogRepo.Count(ctx, phiFilter)
	if err != nil {
		return summary, apperrors.Wrap(err, "failed to count PHI audit entries")
	}
	summary.PHIEntries = phiCount

	oldest, err := a.auditLogRepo.OldestTimestamp(ctx, filter)
	if err != nil {
		return summary, apperrors.Wrap(err, "failed to find oldest audit entry")
	}
	summary.OldestEntryAt = oldest

	summary.Jurisdictions = []auditDomain.Jurisdiction{auditDomain.JurisdictionPIPEDA}
	if phiCount > 0 {
		summary.Jurisdictions = append(summary.Jurisdictions, auditDomain.JurisdictionHIPAA)
	}

	return summary, nil
}

// VerifyChain walks the trail oldest-first verifying each entry's signature
// under the key version it was signed with and each link to its predecessor.
// Returns the number of verified entries, or the position where verification
// failed wrapped in the error.
func (a *auditTrailUseCase) VerifyChain(ctx context.Context) (int64, error) {
	var verified int64
	var prevSignature []byte

	for offset := 0; ; offset += verifyChainBatchSize {
		entries, err := a.auditLogRepo.ListChain(ctx, offset, verifyChainBatchSize)
		if err != nil {
			return verified, apperrors.Wrap(err, "failed to load audit chain")
		}
		if len(entries) == 0 {
			return verified, nil
		}

		for _, entry := range entries {
			signingKey, ok := a.keyChain.Get(entry.KeyVersion)
			if !ok {
				return verified, apperrors.Wrap(
					cryptoDomain.ErrKeyNotFound,
					"signing key version "+entry.KeyVersion+" not in key chain",
				)
			}

			if !bytes.Equal(entry.PrevSignature, prevSignature) {
				return verified, apperrors.Wrap(
					auditDomain.ErrChainBroken,
					"entry "+entry.ID.String()+" does not chain to its predecessor",
				)
			}

			if err := a.signer.Verify(signingKey.Material, entry); err != nil {
				return verified, apperrors.Wrap(err, "entry "+entry.ID.String()+" failed verification")
			}

			prevSignature = entry.Signature
			verified++
		}
	}
}

// CleanExpired removes entries whose retention window has passed. With dryRun
// it reports the count without deleting.
func (a *auditTrailUseCase) CleanExpired(ctx context.Context, dryRun bool) (int64, error) {
	now := time.Now().UTC()

	if dryRun {
		count, err := a.auditLogRepo.CountExpired(ctx, now)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired audit entries")
		}
		return count, nil
	}

	deleted, err := a.auditLogRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired audit entries")
	}

	if deleted > 0 {
		a.logger.InfoContext(ctx, "expired audit entries removed", slog.Int64("deleted", deleted))
	}

	return deleted, nil
}
