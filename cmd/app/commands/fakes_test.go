package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/access"
	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	auditUseCase "github.com/keeplegacy/docvault/internal/audit/usecase"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	docUseCase "github.com/keeplegacy/docvault/internal/documents/usecase"
)

type fakeAuditTrailUseCase struct {
	verifyChainFn  func(ctx context.Context) (int64, error)
	cleanExpiredFn func(ctx context.Context, dryRun bool) (int64, error)
}

func (f *fakeAuditTrailUseCase) Record(ctx context.Context, entry *auditDomain.AuditLogEntry) (*auditDomain.AuditLogEntry, error) {
	return entry, nil
}

func (f *fakeAuditTrailUseCase) Query(ctx context.Context, filter auditDomain.QueryFilter, offset, limit int) (*auditUseCase.QueryResult, error) {
	return &auditUseCase.QueryResult{}, nil
}

func (f *fakeAuditTrailUseCase) VerifyChain(ctx context.Context) (int64, error) {
	return f.verifyChainFn(ctx)
}

func (f *fakeAuditTrailUseCase) CleanExpired(ctx context.Context, dryRun bool) (int64, error) {
	return f.cleanExpiredFn(ctx, dryRun)
}

type fakeDocumentUseCase struct {
	rewrapAllFn    func(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error)
	sweepExpiredFn func(ctx context.Context, dryRun bool) (*docUseCase.SweepReport, error)
}

func (f *fakeDocumentUseCase) Upload(ctx context.Context, principal access.Principal, input docUseCase.UploadInput, meta docUseCase.RequestMeta) (*docDomain.DocumentRecord, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) Download(ctx context.Context, principal access.Principal, documentID uuid.UUID, meta docUseCase.RequestMeta) (*docUseCase.DownloadResult, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) GetMetadata(ctx context.Context, principal access.Principal, documentID uuid.UUID) (*docDomain.DocumentRecord, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) List(ctx context.Context, principal access.Principal, ownerID uuid.UUID, offset, limit int) ([]*docDomain.DocumentRecord, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) Delete(ctx context.Context, principal access.Principal, documentID uuid.UUID, reason string, meta docUseCase.RequestMeta) error {
	return nil
}

func (f *fakeDocumentUseCase) Archive(ctx context.Context, principal access.Principal, documentID uuid.UUID, retentionPeriodDays int, meta docUseCase.RequestMeta) (*docDomain.DocumentRecord, error) {
	return nil, nil
}

func (f *fakeDocumentUseCase) RewrapAll(ctx context.Context, batchSize, workers int) (*docUseCase.RewrapReport, error) {
	return f.rewrapAllFn(ctx, batchSize, workers)
}

func (f *fakeDocumentUseCase) SweepExpired(ctx context.Context, dryRun bool) (*docUseCase.SweepReport, error) {
	return f.sweepExpiredFn(ctx, dryRun)
}

type fakeKeyUseCase struct {
	createFn func(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error)
	rotateFn func(ctx context.Context) (*cryptoDomain.EncryptionKey, error)
}

func (f *fakeKeyUseCase) Create(ctx context.Context, origin cryptoDomain.KeyOrigin) (*cryptoDomain.EncryptionKey, error) {
	return f.createFn(ctx, origin)
}

func (f *fakeKeyUseCase) Rotate(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	return f.rotateFn(ctx)
}

func (f *fakeKeyUseCase) LoadChain(ctx context.Context) (*cryptoDomain.KeyChain, error) {
	return cryptoDomain.NewKeyChain(), nil
}
