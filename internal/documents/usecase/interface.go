// Package usecase implements business logic orchestration for the document
// vault: encrypted upload and download, lifecycle operations, key rewrap,
// and the retention sweep.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/access"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
)

// DocumentRepository defines the persistence contract for document records.
type DocumentRepository interface {
	Create(ctx context.Context, record *docDomain.DocumentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*docDomain.DocumentRecord, error)
	Update(ctx context.Context, record *docDomain.DocumentRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*docDomain.DocumentRecord, error)
	ListNotOnKeyVersion(ctx context.Context, keyVersion string, limit int) ([]*docDomain.DocumentRecord, error)
	CountNotOnKeyVersion(ctx context.Context, keyVersion string) (int64, error)
	ListExpired(ctx context.Context, before time.Time, limit int) ([]*docDomain.DocumentRecord, error)
	CountExpired(ctx context.Context, before time.Time) (int64, error)
	UpdateLastAccessed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RequestMeta carries request provenance into audit entries.
type RequestMeta struct {
	SourceIP  string
	UserAgent string
	RequestID string
}

// UploadInput is the caller-supplied portion of a new document.
type UploadInput struct {
	FileName       string
	ContentType    string
	Classification docDomain.Classification
	AccessLevel    docDomain.AccessLevel
	Content        []byte
}

// DownloadResult is a decrypted document with its record.
type DownloadResult struct {
	Record  *docDomain.DocumentRecord
	Content []byte
}

// RewrapReport summarizes a key rewrap run.
type RewrapReport struct {
	OldKeyVersions []string
	NewKeyVersion  string
	Rewrapped      int64
	Remaining      int64
}

// SweepReport summarizes a retention sweep run.
type SweepReport struct {
	Archived int64
}

// DocumentUseCase provides the document vault operations. Every operation
// that touches a document runs the access policy first and records an audit
// entry in the same transaction as its own database write, so no state change
// can commit without its trail.
type DocumentUseCase interface {
	// Upload encrypts and stores a new document owned by the principal.
	Upload(ctx context.Context, principal access.Principal, input UploadInput, meta RequestMeta) (*docDomain.DocumentRecord, error)

	// Download retrieves, decrypts, and integrity-checks a document.
	Download(ctx context.Context, principal access.Principal, documentID uuid.UUID, meta RequestMeta) (*DownloadResult, error)

	// GetMetadata returns a document record without touching the payload.
	GetMetadata(ctx context.Context, principal access.Principal, documentID uuid.UUID) (*docDomain.DocumentRecord, error)

	// List returns documents owned by ownerID, newest first.
	List(ctx context.Context, principal access.Principal, ownerID uuid.UUID, offset, limit int) ([]*docDomain.DocumentRecord, error)

	// Delete permanently removes a document and its stored payload. The
	// reason is carried into the audit entry and may be empty.
	Delete(ctx context.Context, principal access.Principal, documentID uuid.UUID, reason string, meta RequestMeta) error

	// Archive moves a document's payload into the archive namespace, marks
	// the record archived, and extends its retention deadline to now plus
	// retentionPeriodDays. A non-positive retentionPeriodDays falls back to
	// the classification's configured window. Archiving an archived
	// document is a no-op.
	Archive(ctx context.Context, principal access.Principal, documentID uuid.UUID, retentionPeriodDays int, meta RequestMeta) (*docDomain.DocumentRecord, error)

	// RewrapAll re-encrypts every document still on a superseded key under
	// the active key. Resumable: each document moves independently, so an
	// interrupted run picks up where it left off.
	RewrapAll(ctx context.Context, batchSize, workers int) (*RewrapReport, error)

	// SweepExpired archives non-archived documents whose retention window
	// has passed. With dryRun it only counts them.
	SweepExpired(ctx context.Context, dryRun bool) (*SweepReport, error)
}
