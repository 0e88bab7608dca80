package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/access"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	"github.com/keeplegacy/docvault/internal/metrics"
)

// documentUseCaseWithMetrics decorates DocumentUseCase with metrics instrumentation.
type documentUseCaseWithMetrics struct {
	next    DocumentUseCase
	metrics metrics.BusinessMetrics
}

// NewDocumentUseCaseWithMetrics wraps a DocumentUseCase with metrics recording.
func NewDocumentUseCaseWithMetrics(useCase DocumentUseCase, m metrics.BusinessMetrics) DocumentUseCase {
	return &documentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (d *documentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "documents", operation, status)
	d.metrics.RecordDuration(ctx, "documents", operation, time.Since(start), status)
}

// Upload records metrics for document upload operations.
func (d *documentUseCaseWithMetrics) Upload(
	ctx context.Context,
	principal access.Principal,
	input UploadInput,
	meta RequestMeta,
) (*docDomain.DocumentRecord, error) {
	start := time.Now()
	record, err := d.next.Upload(ctx, principal, input, meta)
	d.record(ctx, "document_upload", start, err)
	if err == nil {
		d.metrics.RecordBytes(ctx, "documents", "document_upload", int64(record.SizeBytes))
	}
	return record, err
}

// Download records metrics for document download operations.
func (d *documentUseCaseWithMetrics) Download(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	meta RequestMeta,
) (*DownloadResult, error) {
	start := time.Now()
	result, err := d.next.Download(ctx, principal, documentID, meta)
	d.record(ctx, "document_download", start, err)
	if err == nil {
		d.metrics.RecordBytes(ctx, "documents", "document_download", int64(len(result.Content)))
	}
	return result, err
}

// GetMetadata records metrics for metadata retrieval operations.
func (d *documentUseCaseWithMetrics) GetMetadata(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
) (*docDomain.DocumentRecord, error) {
	start := time.Now()
	record, err := d.next.GetMetadata(ctx, principal, documentID)
	d.record(ctx, "document_get_metadata", start, err)
	return record, err
}

// List records metrics for document list operations.
func (d *documentUseCaseWithMetrics) List(
	ctx context.Context,
	principal access.Principal,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*docDomain.DocumentRecord, error) {
	start := time.Now()
	records, err := d.next.List(ctx, principal, ownerID, offset, limit)
	d.record(ctx, "document_list", start, err)
	return records, err
}

// Delete records metrics for document deletion operations.
func (d *documentUseCaseWithMetrics) Delete(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	reason string,
	meta RequestMeta,
) error {
	start := time.Now()
	err := d.next.Delete(ctx, principal, documentID, reason, meta)
	d.record(ctx, "document_delete", start, err)
	return err
}

// Archive records metrics for document archive operations.
func (d *documentUseCaseWithMetrics) Archive(
	ctx context.Context,
	principal access.Principal,
	documentID uuid.UUID,
	retentionPeriodDays int,
	meta RequestMeta,
) (*docDomain.DocumentRecord, error) {
	start := time.Now()
	record, err := d.next.Archive(ctx, principal, documentID, retentionPeriodDays, meta)
	d.record(ctx, "document_archive", start, err)
	return record, err
}

// RewrapAll records metrics for key rewrap runs.
func (d *documentUseCaseWithMetrics) RewrapAll(ctx context.Context, batchSize, workers int) (*RewrapReport, error) {
	start := time.Now()
	report, err := d.next.RewrapAll(ctx, batchSize, workers)
	d.record(ctx, "document_rewrap_all", start, err)
	return report, err
}

// SweepExpired records metrics for retention sweep runs.
func (d *documentUseCaseWithMetrics) SweepExpired(ctx context.Context, dryRun bool) (*SweepReport, error) {
	start := time.Now()
	report, err := d.next.SweepExpired(ctx, dryRun)
	d.record(ctx, "document_retention_sweep", start, err)
	return report, err
}
