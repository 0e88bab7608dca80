package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/keeplegacy/docvault/internal/access"
	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	auditUsecase "github.com/keeplegacy/docvault/internal/audit/usecase"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	cryptoService "github.com/keeplegacy/docvault/internal/crypto/service"
	"github.com/keeplegacy/docvault/internal/database"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
	"github.com/keeplegacy/docvault/internal/storage"
)

type documentUseCase struct {
	documentRepo  DocumentRepository
	txManager     database.TxManager
	cipherEngine  cryptoService.CipherEngine
	keyChain      *cryptoDomain.KeyChain
	objectStore   storage.ObjectStore
	accessCtrl    *access.Controller
	auditTrail    auditUsecase.AuditTrailUseCase
	retention     *docDomain.RetentionPolicy
	maxUploadSize int64
	allowedTypes  []string
	archivePrefix string
	logger        *slog.Logger
}

// NewDocumentUseCase creates a new DocumentUseCase with the provided
// dependencies. allowedTypes is the content-type allowlist; empty means any
// type is accepted.
func NewDocumentUseCase(
	documentRepo DocumentRepository,
	txManager database.TxManager,
	cipherEngine cryptoService.CipherEngine,
	keyChain *cryptoDomain.KeyChain,
	objectStore storage.ObjectStore,
	accessCtrl *access.Controller,
	auditTrail auditUsecase.AuditTrailUseCase,
	retention *docDomain.RetentionPolicy,
	maxUploadSize int64,
	allowedTypes []string,
	archivePrefix string,
	logger *slog.Logger,
) DocumentUseCase {
	return &documentUseCase{
		documentRepo:  documentRepo,
		txManager:     txManager,
		cipherEngine:  cipherEngine,
		keyChain:      keyChain,
		objectStore:   objectStore,
		accessCtrl:    accessCtrl,
		auditTrail:    auditTrail,
		retention:     retention,
		maxUploadSize: maxUploadSize,
		allowedTypes:  allowedTypes,
		archivePrefix: archivePrefix,
		logger:        logger,
	}
}

func (d *documentUseCase) contentTypeAllowed(contentType string) bool {
	if len(d.allowedTypes) == 0 {
		return true
	}
	for _, allowed := range d.allowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func checksumHex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// storageKeyFor builds the object key for a document payload. The creation
// timestamp keeps keys unique even if a document ID were ever reused.
func storageKeyFor(ownerID, documentID uuid.UUID, createdAt time.Time) string {
	return fmt.Sprintf("documents/%s/%s/%d", ownerID, documentID, createdAt.Unix())
}

func (d *documentUseCase) validateUpload(input UploadInput) error {
	if len(input.Content) == 0 {
		return docDomain.ErrEmptyDocument
	}
	if d.maxUploadSize > 0 && int64(len(input.Content)) > d.maxUploadSize {
		return docDomain.ErrDocumentTooLarge
	}
	if !d.contentTypeAllowed(input.ContentType) {
		return docDomain.ErrContentTypeNotAllowed
	}
	if !input.Classification.Valid() {
		return docDomain.ErrUnknownClassification
	}
	if !input.AccessLevel.Valid() {
		return docDomain.ErrUnknownAccessLevel
	}
	if input.FileName == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "file name is required")
	}
	return nil
}

// Upload validates, encrypts, and stores a new document. The encrypted
// payload is written to object storage first; the record and its audit entry
// then commit in one transaction. If that transaction fails the stored
// payload is removed again, so no object outlives a record that never existed.
func (d *documentUseCase) Upload(
	ctx context.Context,
	principal access.Principal,
	input UploadInput,
	meta RequestMeta,
) (*docDomain.DocumentRecord, error) {
	if err := d.validateUpload(input); err != nil {
		return nil, err
	}

	key, ok := d.keyChain.Active()
	if !ok {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyNotFound, "no active encryption key")
	}

	now := time.Now().UTC()
	documentID := uuid.Must(uuid.NewV7())

	expiresAt, err := d.retention.ExpiresAt(input.Classification, now)
	if err != nil {
		return nil, err
	}

	payload, err := d.cipherEngine.Encrypt(input.Content, key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt document")
	}

	raw, err := payload.Marshal()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal encrypted payload")
	}

	record := &docDomain.DocumentRecord{
		ID:                 documentID,
		OwnerID:            principal.ID,
		FileName:           input.FileName,
		ContentType:        input.ContentType,
		Classification:     input.Classification,
		AccessLevel:        input.AccessLevel,
		StorageKey:         storageKeyFor(principal.ID, documentID, now),
		KeyVersion:         key.Version(),
		Checksum:           checksumHex(input.Content),
		SizeBytes:          uint64(len(input.Content)),
		CreatedAt:          now,
		UpdatedAt:          now,
		RetentionExpiresAt: expiresAt,
	}

	objectMeta := map[string]string{
		"document-id": documentID.String(),
		"key-version": record.KeyVersion,
	}
	if err := d.objectStore.Put(ctx, record.StorageKey, raw, "application/octet-stream", objectMeta); err != nil {
		return nil, apperrors.Wrap(docDomain.ErrStorageWriteFailed, err.Error())
	}

	err = d.txManager.WithTx(ctx, func(txCtx context.Context) error {
		entry := &auditDomain.AuditLogEntry{
			EventType:    auditDomain.EventUpload,
			Severity:     auditDomain.SeverityInfo,
			ActorID:      principal.ID.String(),
			ResourceID:   &documentID,
			ResourceType: "document",
			SourceIP:     meta.SourceIP,
			UserAgent:    meta.UserAgent,
			RequestID:    meta.RequestID,
			Details: auditDomain.UploadDetails{
				FileName:       record.FileName,
				ContentType:    record.ContentType,
				Classification: string(record.Classification),
				SizeBytes:      int64(record.SizeBytes),
			},
		}
		if _, err := d.auditTrail.Record(txCtx, entry); err != nil {
			return apperrors.Wrap(docDomain.ErrAuditWriteFailed, err.Error())
		}

		return d.documentRepo.Create(txCtx, record)
	})
	if err != nil {
		// Do not leave an unreferenced payload behind.
		if delErr := d.objectStore.Delete(ctx, record.StorageKey); delErr != nil {
			d.logger.ErrorContext(ctx, "failed to remove orphaned payload",
				slog.String("storage_key", record.StorageKey),
				slog.Any("error", delErr),
			)
		}
		return nil, err
	}

	d.logger.InfoContext(ctx, "document uploaded",
		slog.String("document_id", documentID.String()),
		slog.String("classification", string(record.Classification)),
		slog.Uint64("size_bytes", record.SizeBytes),
	)

	return record, nil
}

// denyAndAudit records an access_denied entry and returns ErrForbidden. The
// audit write uses its own transaction; a denial is a state of record even
// though the denied operation changed nothing.
func (d *documentUseCase) denyAndAudit(
	ctx context.Context,
	principal access.Principal,
	record *docDomain.DocumentRecord,
	operation access.Operation,
	decision access.Decision,
	meta RequestMeta,
) error {
	entry := &auditDomain.AuditLogEntry{
		EventType:    auditDomain.EventAccessDenied,
		Severity:     auditDomain.SeverityWarning,
		ActorID:      principal.ID.String(),
		ResourceID:   &record.ID,
		ResourceType: "document",
		SourceIP:     meta.SourceIP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		Details: auditDomain.AccessDeniedDetails{
			Operation: string(operation),
			Reason:    decision.Reason,
		},
	}
	if _, err := d.auditTrail.Record(ctx, entry); err != nil {
		d.logger.ErrorContext(ctx, "failed to record access denial",
			slog.String("document_id", record.ID.String()),
			slog.Any("error", err),
		)
	}

	return apperrors.Wrap(apperrors.ErrForbidden, decision.Reason)
}

// auditIntegrityFailure records a critical entry for a payload that failed
// AEAD authentication or checksum verification. The failed read changed no
// state, so the entry commits on its own.
func (d *documentUseCase) auditIntegrityFailure(
	ctx context.Context,
	eventType auditDomain.EventType,
	actorID string,
	record *docDomain.DocumentRecord,
	meta RequestMeta,
	cause error,
) {
	entry := &auditDomain.AuditLogEntry{
		EventType:    eventType,
		Severity:     auditDomain.SeverityCritical,
		ActorID:      actorID,
		ResourceID:   &record.ID,
		ResourceType: "document",
		SourceIP:     meta.SourceIP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		Details: auditDomain.IntegrityFailureDetails{
			FileName:   record.FileName,
			KeyVersion: record.KeyVersion,
			Reason:     cause.Error(),
		},
	}
	if _, err := d.auditTrail.Record(ctx, entry); err != nil {
		d.logger.ErrorContext(ctx, "failed to record integrity failure",
			slog.String("document_id", record.ID.String()),
			slog.Any("error", err),
		)
	}
}

// decrypt loads, authenticates, and decrypts a document payload, then checks
// the plaintext against the record's stored checksum.
func (d *documentUseCase) decrypt(ctx context.Context, record *docDomain.DocumentRecord) ([]byte, error) {
	raw, err := d.objectStore.Get(ctx, record.StorageKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read document payload")
	}

	payload, err := cryptoDomain.UnmarshalPayload(raw)
	if err != nil {
		return nil, err
	}

	key, ok := d.keyChain.Get(payload.KeyVersion)
	if !ok {
		return nil, apperrors.Wrap(
			cryptoDomain.ErrKeyNotFound,
			"key version "+payload.KeyVersion+" not in key chain",
		)
	}

	content, err := d.cipherEngine.Decrypt(payload, key)
	if err != nil {
		return nil, err
	}

	expected := []byte(record.Checksum)
	actual := []byte(checksumHex(content))
	if subtle.ConstantTimeCompare(expected, actual) != 1 {
		return nil, apperrors.Wrap(docDomain.ErrIntegrityViolation, "document checksum mismatch")
	}

	return content, nil
}

// Download retrieves, decrypts, and integrity-checks a document. The
// download audit entry and the last-access stamp commit together.
func (d *documentUseCase) Download(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	meta RequestMeta,
) (*DownloadResult, error) {
	record, err := d.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if decision := d.accessCtrl.Check(principal, record, access.OperationRead); !decision.Allowed {
		return nil, d.denyAndAudit(ctx, principal, record, access.OperationRead, decision, meta)
	}

	content, err := d.decrypt(ctx, record)
	if err != nil {
		if errors.Is(err, apperrors.ErrIntegrity) {
			d.auditIntegrityFailure(ctx, auditDomain.EventDownload, principal.ID.String(), record, meta, err)
		}
		return nil, err
	}

	now := time.Now().UTC()
	err = d.txManager.WithTx(ctx, func(txCtx context.Context) error {
		entry := &auditDomain.AuditLogEntry{
			EventType:    auditDomain.EventDownload,
			Severity:     auditDomain.SeverityInfo,
			ActorID:      principal.ID.String(),
			ResourceID:   &record.ID,
			ResourceType: "document",
			SourceIP:     meta.SourceIP,
			UserAgent:    meta.UserAgent,
			RequestID:    meta.RequestID,
			Details: auditDomain.DownloadDetails{
				FileName:       record.FileName,
				Classification: string(record.Classification),
				SizeBytes:      int64(record.SizeBytes),
			},
		}
		if _, err := d.auditTrail.Record(txCtx, entry); err != nil {
			return apperrors.Wrap(docDomain.ErrAuditWriteFailed, err.Error())
		}

		return d.documentRepo.UpdateLastAccessed(txCtx, record.ID, now)
	})
	if err != nil {
		return nil, err
	}

	record.LastAccessedAt = &now
	return &DownloadResult{Record: record, Content: content}, nil
}

// GetMetadata returns a document record without touching the payload.
func (d *documentUseCase) GetMetadata(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
) (*docDomain.DocumentRecord, error) {
	record, err := d.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if decision := d.accessCtrl.Check(principal, record, access.OperationRead); !decision.Allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, decision.Reason)
	}

	return record, nil
}

// List returns documents owned by ownerID, newest first. Only the owner and
// admins may list.
func (d *documentUseCase) List(
	ctx context.Context,
	principal access.Principal,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*docDomain.DocumentRecord, error) {
	if principal.Role != access.RoleAdmin && principal.ID != ownerID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "insufficient permissions")
	}

	return d.documentRepo.ListByOwner(ctx, ownerID, offset, limit)
}

// Delete permanently removes a document. The record deletion and its audit
// entry commit together; the payload is removed from storage afterwards. The
// audit trail is the only remaining evidence the document existed.
func (d *documentUseCase) Delete(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	reason string,
	meta RequestMeta,
) error {
	record, err := d.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if decision := d.accessCtrl.Check(principal, record, access.OperationDelete); !decision.Allowed {
		return d.denyAndAudit(ctx, principal, record, access.OperationDelete, decision, meta)
	}

	err = d.txManager.WithTx(ctx, func(txCtx context.Context) error {
		entry := &auditDomain.AuditLogEntry{
			EventType:    auditDomain.EventDelete,
			Severity:     auditDomain.SeverityWarning,
			ActorID:      principal.ID.String(),
			ResourceID:   &record.ID,
			ResourceType: "document",
			SourceIP:     meta.SourceIP,
			UserAgent:    meta.UserAgent,
			RequestID:    meta.RequestID,
			Details: auditDomain.DeleteDetails{
				FileName: record.FileName,
				Reason:   reason,
			},
		}
		if _, err := d.auditTrail.Record(txCtx, entry); err != nil {
			return apperrors.Wrap(docDomain.ErrAuditWriteFailed, err.Error())
		}

		return d.documentRepo.Delete(txCtx, record.ID)
	})
	if err != nil {
		return err
	}

	// The record is gone; an orphaned ciphertext is unreadable without its
	// key version but should still not linger.
	if err := d.objectStore.Delete(ctx, record.StorageKey); err != nil {
		d.logger.WarnContext(ctx, "failed to remove deleted document payload",
			slog.String("document_id", record.ID.String()),
			slog.String("storage_key", record.StorageKey),
			slog.Any("error", err),
		)
	}

	d.logger.InfoContext(ctx, "document deleted", slog.String("document_id", record.ID.String()))
	return nil
}

func (d *documentUseCase) archiveKeyFor(storageKey string) string {
	return d.archivePrefix + "/" + storageKey
}

// archiveRecord moves a document's payload under the archive prefix, marks
// the record archived, and resets its retention deadline, with the audit
// entry in the same transaction. Shared by the caller-facing Archive and the
// retention sweep.
func (d *documentUseCase) archiveRecord(
	ctx context.Context,
	actorID string,
	record *docDomain.DocumentRecord,
	retentionExpiresAt time.Time,
	meta RequestMeta,
) error {
	oldKey := record.StorageKey
	archiveKey := d.archiveKeyFor(oldKey)

	if err := d.objectStore.Copy(ctx, archiveKey, oldKey); err != nil {
		return apperrors.Wrap(err, "failed to copy payload to archive")
	}

	now := time.Now().UTC()
	oldExpiry := record.RetentionExpiresAt
	record.Archived = true
	record.StorageKey = archiveKey
	record.RetentionExpiresAt = retentionExpiresAt
	record.UpdatedAt = now

	err := d.txManager.WithTx(ctx, func(txCtx context.Context) error {
		entry := &auditDomain.AuditLogEntry{
			EventType:    auditDomain.EventArchive,
			Severity:     auditDomain.SeverityInfo,
			ActorID:      actorID,
			ResourceID:   &record.ID,
			ResourceType: "document",
			SourceIP:     meta.SourceIP,
			UserAgent:    meta.UserAgent,
			RequestID:    meta.RequestID,
			Details: auditDomain.ArchiveDetails{
				FileName:           record.FileName,
				ArchiveKey:         archiveKey,
				RetentionExpiresAt: retentionExpiresAt,
			},
		}
		if _, err := d.auditTrail.Record(txCtx, entry); err != nil {
			return apperrors.Wrap(docDomain.ErrAuditWriteFailed, err.Error())
		}

		return d.documentRepo.Update(txCtx, record)
	})
	if err != nil {
		// Roll the record back in memory and drop the archive copy.
		record.Archived = false
		record.StorageKey = oldKey
		record.RetentionExpiresAt = oldExpiry
		if delErr := d.objectStore.Delete(ctx, archiveKey); delErr != nil {
			d.logger.ErrorContext(ctx, "failed to remove orphaned archive copy",
				slog.String("storage_key", archiveKey),
				slog.Any("error", delErr),
			)
		}
		return err
	}

	if err := d.objectStore.Delete(ctx, oldKey); err != nil {
		d.logger.WarnContext(ctx, "failed to remove pre-archive payload",
			slog.String("document_id", record.ID.String()),
			slog.String("storage_key", oldKey),
			slog.Any("error", err),
		)
	}

	return nil
}

// Archive moves a document into the archive namespace and extends its
// retention deadline by retentionPeriodDays from now, falling back to the
// classification's configured window when the caller gives no period.
// Re-archiving an archived document is a no-op.
func (d *documentUseCase) Archive(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	retentionPeriodDays int,
	meta RequestMeta,
) (*docDomain.DocumentRecord, error) {
	record, err := d.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if decision := d.accessCtrl.Check(principal, record, access.OperationArchive); !decision.Allowed {
		return nil, d.denyAndAudit(ctx, principal, record, access.OperationArchive, decision, meta)
	}

	if record.Archived {
		return record, nil
	}

	now := time.Now().UTC()
	var expiresAt time.Time
	if retentionPeriodDays > 0 {
		expiresAt = now.AddDate(0, 0, retentionPeriodDays)
	} else {
		expiresAt, err = d.retention.ExpiresAt(record.Classification, now)
		if err != nil {
			return nil, err
		}
	}

	if err := d.archiveRecord(ctx, principal.ID.String(), record, expiresAt, meta); err != nil {
		return nil, err
	}

	d.logger.InfoContext(ctx, "document archived", slog.String("document_id", record.ID.String()))
	return record, nil
}

// rewrapOne re-encrypts a single document under the active key. The payload
// is authenticated under its old key before the new ciphertext overwrites it.
func (d *documentUseCase) rewrapOne(
	ctx context.Context,
	record *docDomain.DocumentRecord,
	activeKey *cryptoDomain.EncryptionKey,
) error {
	content, err := d.decrypt(ctx, record)
	if err != nil {
		if errors.Is(err, apperrors.ErrIntegrity) {
			d.auditIntegrityFailure(ctx, auditDomain.EventKeyRotation, auditDomain.SystemActor, record, RequestMeta{}, err)
		}
		return err
	}
	defer cryptoDomain.Zero(content)

	payload, err := d.cipherEngine.Encrypt(content, activeKey)
	if err != nil {
		return apperrors.Wrap(err, "failed to re-encrypt document")
	}

	raw, err := payload.Marshal()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal re-encrypted payload")
	}

	objectMeta := map[string]string{
		"document-id": record.ID.String(),
		"key-version": activeKey.Version(),
	}
	if err := d.objectStore.Put(ctx, record.StorageKey, raw, "application/octet-stream", objectMeta); err != nil {
		return apperrors.Wrap(docDomain.ErrStorageWriteFailed, err.Error())
	}

	record.KeyVersion = activeKey.Version()
	record.UpdatedAt = time.Now().UTC()
	return d.documentRepo.Update(ctx, record)
}

// RewrapAll re-encrypts every document still on a superseded key under the
// active key, batchSize documents at a time with up to workers in flight.
// Each document commits independently, so an interrupted run resumes from
// whatever is still on an old version. A key_rotation audit entry records
// the run.
func (d *documentUseCase) RewrapAll(ctx context.Context, batchSize, workers int) (*RewrapReport, error) {
	activeKey, ok := d.keyChain.Active()
	if !ok {
		return nil, apperrors.Wrap(cryptoDomain.ErrKeyNotFound, "no active encryption key")
	}

	if batchSize <= 0 {
		batchSize = 100
	}
	if workers <= 0 {
		workers = 4
	}

	report := &RewrapReport{NewKeyVersion: activeKey.Version()}
	oldVersions := make(map[string]struct{})

	for {
		batch, err := d.documentRepo.ListNotOnKeyVersion(ctx, activeKey.Version(), batchSize)
		if err != nil {
			return report, apperrors.Wrap(err, "failed to list documents for rewrap")
		}
		if len(batch) == 0 {
			break
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(workers)
		for _, record := range batch {
			record := record
			oldVersions[record.KeyVersion] = struct{}{}
			group.Go(func() error {
				return d.rewrapOne(groupCtx, record, activeKey)
			})
		}
		if err := group.Wait(); err != nil {
			if remaining, countErr := d.documentRepo.CountNotOnKeyVersion(ctx, activeKey.Version()); countErr == nil {
				report.Remaining = remaining
			}
			return report, apperrors.Wrap(err, "rewrap batch failed")
		}
		report.Rewrapped += int64(len(batch))
	}

	for version := range oldVersions {
		report.OldKeyVersions = append(report.OldKeyVersions, version)
	}

	if report.Rewrapped > 0 {
		oldVersion := ""
		if len(report.OldKeyVersions) == 1 {
			oldVersion = report.OldKeyVersions[0]
		}
		entry := &auditDomain.AuditLogEntry{
			EventType:    auditDomain.EventKeyRotation,
			Severity:     auditDomain.SeverityInfo,
			ActorID:      auditDomain.SystemActor,
			ResourceType: "encryption_key",
			Details: auditDomain.KeyRotationDetails{
				OldKeyVersion:  oldVersion,
				NewKeyVersion:  activeKey.Version(),
				RewrappedCount: report.Rewrapped,
			},
		}
		if _, err := d.auditTrail.Record(ctx, entry); err != nil {
			return report, apperrors.Wrap(docDomain.ErrAuditWriteFailed, err.Error())
		}
	}

	d.logger.InfoContext(ctx, "document rewrap complete",
		slog.String("key_version", activeKey.Version()),
		slog.Int64("rewrapped", report.Rewrapped),
	)

	return report, nil
}

// SweepExpired archives every non-archived document whose retention window
// has passed. The sweep acts as the system, not as any principal.
func (d *documentUseCase) SweepExpired(ctx context.Context, dryRun bool) (*SweepReport, error) {
	now := time.Now().UTC()

	if dryRun {
		count, err := d.documentRepo.CountExpired(ctx, now)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to count expired documents")
		}
		return &SweepReport{Archived: count}, nil
	}

	report := &SweepReport{}
	const sweepBatchSize = 100

	for {
		batch, err := d.documentRepo.ListExpired(ctx, now, sweepBatchSize)
		if err != nil {
			return report, apperrors.Wrap(err, "failed to list expired documents")
		}
		if len(batch) == 0 {
			break
		}

		for _, record := range batch {
			expiresAt, err := d.retention.ExpiresAt(record.Classification, now)
			if err != nil {
				return report, err
			}
			if err := d.archiveRecord(ctx, auditDomain.SystemActor, record, expiresAt, RequestMeta{}); err != nil {
				return report, apperrors.Wrap(err, "failed to archive expired document "+record.ID.String())
			}
			report.Archived++
		}
	}

	if report.Archived > 0 {
		d.logger.InfoContext(ctx, "retention sweep complete", slog.Int64("archived", report.Archived))
	}

	return report, nil
}
