package usecase

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/keeplegacy/docvault/internal/access"
	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	auditUsecase "github.com/keeplegacy/docvault/internal/audit/usecase"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	cryptoService "github.com/keeplegacy/docvault/internal/crypto/service"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
	"github.com/keeplegacy/docvault/internal/storage"
)

// fakeDocumentRepo is an in-memory DocumentRepository.
type fakeDocumentRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*docDomain.DocumentRecord
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{records: make(map[uuid.UUID]*docDomain.DocumentRecord)}
}

func (f *fakeDocumentRepo) Create(_ context.Context, record *docDomain.DocumentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*docDomain.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}
	clone := *record
	return &clone, nil
}

func (f *fakeDocumentRepo) Update(_ context.Context, record *docDomain.DocumentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}
	delete(f.records, id)
	return nil
}

func (f *fakeDocumentRepo) ListByOwner(
	_ context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*docDomain.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*docDomain.DocumentRecord, 0)
	for _, record := range f.records {
		if record.OwnerID == ownerID {
			clone := *record
			matched = append(matched, &clone)
		}
	}
	if offset >= len(matched) {
		return []*docDomain.DocumentRecord{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeDocumentRepo) ListNotOnKeyVersion(
	_ context.Context,
	keyVersion string,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*docDomain.DocumentRecord, 0)
	for _, record := range f.records {
		if record.KeyVersion != keyVersion {
			clone := *record
			matched = append(matched, &clone)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, nil
}

func (f *fakeDocumentRepo) CountNotOnKeyVersion(_ context.Context, keyVersion string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, record := range f.records {
		if record.KeyVersion != keyVersion {
			count++
		}
	}
	return count, nil
}

func (f *fakeDocumentRepo) ListExpired(
	_ context.Context,
	before time.Time,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*docDomain.DocumentRecord, 0)
	for _, record := range f.records {
		if !record.Archived && !record.RetentionExpiresAt.After(before) {
			clone := *record
			matched = append(matched, &clone)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, nil
}

func (f *fakeDocumentRepo) CountExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, record := range f.records {
		if !record.Archived && !record.RetentionExpiresAt.After(before) {
			count++
		}
	}
	return count, nil
}

func (f *fakeDocumentRepo) UpdateLastAccessed(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}
	record.LastAccessedAt = &at
	return nil
}

// fakeAuditTrail captures recorded entries without a database.
type fakeAuditTrail struct {
	mu      sync.Mutex
	entries []*auditDomain.AuditLogEntry
	failing bool
}

func (f *fakeAuditTrail) Record(
	_ context.Context,
	entry *auditDomain.AuditLogEntry,
) (*auditDomain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, "audit store down")
	}
	entry.ID = uuid.Must(uuid.NewV7())
	entry.Timestamp = time.Now().UTC()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAuditTrail) Query(
	_ context.Context,
	_ auditDomain.QueryFilter,
	_, _ int,
) (*auditUsecase.QueryResult, error) {
	return &auditUsecase.QueryResult{}, nil
}

func (f *fakeAuditTrail) VerifyChain(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeAuditTrail) CleanExpired(_ context.Context, _ bool) (int64, error) { return 0, nil }

func (f *fakeAuditTrail) lastEntry() *auditDomain.AuditLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

func (f *fakeAuditTrail) byEventType(et auditDomain.EventType) []*auditDomain.AuditLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*auditDomain.AuditLogEntry, 0)
	for _, entry := range f.entries {
		if entry.EventType == et {
			matched = append(matched, entry)
		}
	}
	return matched
}

// passTxManager runs the function without a real transaction.
type passTxManager struct{}

func (passTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type vaultFixture struct {
	useCase  DocumentUseCase
	repo     *fakeDocumentRepo
	trail    *fakeAuditTrail
	keyChain *cryptoDomain.KeyChain
	store    storage.ObjectStore
}

func newKey(t *testing.T, active bool, chain *cryptoDomain.KeyChain) *cryptoDomain.EncryptionKey {
	t.Helper()
	material := make([]byte, cryptoDomain.KeySize)
	_, err := io.ReadFull(rand.Reader, material)
	require.NoError(t, err)
	key := &cryptoDomain.EncryptionKey{
		ID:        uuid.Must(uuid.NewV7()),
		Origin:    cryptoDomain.OriginLocal,
		Algorithm: cryptoDomain.AESGCM,
		Material:  material,
		IsActive:  active,
		CreatedAt: time.Now().UTC(),
	}
	chain.Add(key, active)
	return key
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() {
		_ = bucket.Close()
	})

	chain := cryptoDomain.NewKeyChain()
	newKey(t, true, chain)

	repo := newFakeDocumentRepo()
	trail := &fakeAuditTrail{}
	store := storage.NewBlobStore(bucket, 5*time.Second)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	useCase := NewDocumentUseCase(
		repo,
		passTxManager{},
		cryptoService.NewCipherEngine(cryptoService.NewAEADManager()),
		chain,
		store,
		access.NewController(),
		trail,
		docDomain.NewRetentionPolicy(365, 2555, 2190, 730),
		1<<20,
		[]string{"application/pdf", "image/png"},
		"archive",
		logger,
	)

	return &vaultFixture{useCase: useCase, repo: repo, trail: trail, keyChain: chain, store: store}
}

func testPrincipal(role access.Role) access.Principal {
	return access.Principal{ID: uuid.Must(uuid.NewV7()), Role: role}
}

func testUpload() UploadInput {
	return UploadInput{
		FileName:       "will-2026.pdf",
		ContentType:    "application/pdf",
		Classification: docDomain.ClassificationLegal,
		AccessLevel:    docDomain.AccessLevelRead,
		Content:        []byte("I, Jane Doe, being of sound mind..."),
	}
}

func TestDocumentUseCase_UploadAndDownload(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)
	input := testUpload()

	record, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{SourceIP: "203.0.113.7"})
	require.NoError(t, err)

	assert.Equal(t, owner.ID, record.OwnerID)
	assert.Equal(t, fixture.keyChain.ActiveVersion(), record.KeyVersion)
	assert.Equal(t, uint64(len(input.Content)), record.SizeBytes)
	assert.NotEmpty(t, record.Checksum)
	assert.Contains(t, record.StorageKey, record.ID.String())

	// Stored bytes must not be the plaintext.
	stored, err := fixture.store.Get(ctx, record.StorageKey)
	require.NoError(t, err)
	assert.NotContains(t, string(stored), "Jane Doe")

	result, err := fixture.useCase.Download(ctx, owner, record.ID, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, input.Content, result.Content)
	assert.NotNil(t, result.Record.LastAccessedAt)

	uploads := fixture.trail.byEventType(auditDomain.EventUpload)
	require.Len(t, uploads, 1)
	assert.Equal(t, owner.ID.String(), uploads[0].ActorID)
	downloads := fixture.trail.byEventType(auditDomain.EventDownload)
	require.Len(t, downloads, 1)
}

func TestDocumentUseCase_UploadValidation(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	tests := []struct {
		name    string
		mutate  func(*UploadInput)
		wantErr error
	}{
		{
			name:    "empty content",
			mutate:  func(in *UploadInput) { in.Content = nil },
			wantErr: docDomain.ErrEmptyDocument,
		},
		{
			name:    "oversized content",
			mutate:  func(in *UploadInput) { in.Content = make([]byte, 1<<20+1) },
			wantErr: docDomain.ErrDocumentTooLarge,
		},
		{
			name:    "disallowed content type",
			mutate:  func(in *UploadInput) { in.ContentType = "application/x-msdownload" },
			wantErr: docDomain.ErrContentTypeNotAllowed,
		},
		{
			name:    "unknown classification",
			mutate:  func(in *UploadInput) { in.Classification = "secret" },
			wantErr: docDomain.ErrUnknownClassification,
		},
		{
			name:    "unknown access level",
			mutate:  func(in *UploadInput) { in.AccessLevel = "root" },
			wantErr: docDomain.ErrUnknownAccessLevel,
		},
		{
			name:    "missing file name",
			mutate:  func(in *UploadInput) { in.FileName = "" },
			wantErr: apperrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testUpload()
			tt.mutate(&input)
			_, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, fixture.trail.entries, "rejected uploads must not produce audit entries")
}

func TestDocumentUseCase_UploadRetention(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	tests := []struct {
		classification docDomain.Classification
		wantDays       int
	}{
		{docDomain.ClassificationPersonal, 365},
		{docDomain.ClassificationFinancial, 2555},
		{docDomain.ClassificationMedical, 2190},
		{docDomain.ClassificationLegal, 730},
	}

	for _, tt := range tests {
		t.Run(string(tt.classification), func(t *testing.T) {
			input := testUpload()
			input.Classification = tt.classification
			record, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{})
			require.NoError(t, err)

			want := record.CreatedAt.Add(time.Duration(tt.wantDays) * 24 * time.Hour)
			assert.Equal(t, want, record.RetentionExpiresAt)
		})
	}
}

func TestDocumentUseCase_UploadRollsBackPayloadOnAuditFailure(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	fixture.trail.failing = true

	_, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	assert.ErrorIs(t, err, docDomain.ErrAuditWriteFailed)
	assert.Empty(t, fixture.repo.records, "record must not exist without its audit entry")
}

func TestDocumentUseCase_DownloadDenied(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)
	stranger := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	_, err = fixture.useCase.Download(ctx, stranger, record.ID, RequestMeta{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	denials := fixture.trail.byEventType(auditDomain.EventAccessDenied)
	require.Len(t, denials, 1)
	assert.Equal(t, auditDomain.SeverityWarning, denials[0].Severity)
	assert.Equal(t, stranger.ID.String(), denials[0].ActorID)

	details, ok := denials[0].Details.(auditDomain.AccessDeniedDetails)
	require.True(t, ok)
	assert.Equal(t, "read", details.Operation)
	assert.Equal(t, "insufficient permissions", details.Reason)
}

func TestDocumentUseCase_DownloadPublicDocument(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)
	stranger := testPrincipal(access.RoleUser)

	input := testUpload()
	input.AccessLevel = docDomain.AccessLevelPublic
	record, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{})
	require.NoError(t, err)

	result, err := fixture.useCase.Download(ctx, stranger, record.ID, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, input.Content, result.Content)
}

func TestDocumentUseCase_DownloadAdminBypassesOwnership(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)
	admin := testPrincipal(access.RoleAdmin)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	_, err = fixture.useCase.Download(ctx, admin, record.ID, RequestMeta{})
	assert.NoError(t, err)
}

func TestDocumentUseCase_DownloadDetectsTamperedPayload(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	// Flip a ciphertext bit in storage.
	raw, err := fixture.store.Get(ctx, record.StorageKey)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	require.NoError(t, fixture.store.Put(ctx, record.StorageKey, raw, "application/octet-stream", nil))

	_, err = fixture.useCase.Download(ctx, owner, record.ID, RequestMeta{SourceIP: "203.0.113.7"})
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)

	// The failed read is itself an event of record, at critical severity.
	entry := fixture.trail.lastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.EventDownload, entry.EventType)
	assert.Equal(t, auditDomain.SeverityCritical, entry.Severity)
	assert.Equal(t, owner.ID.String(), entry.ActorID)
	assert.Equal(t, "203.0.113.7", entry.SourceIP)

	details, ok := entry.Details.(auditDomain.IntegrityFailureDetails)
	require.True(t, ok)
	assert.Equal(t, record.FileName, details.FileName)
	assert.NotEmpty(t, details.Reason)
}

func TestDocumentUseCase_ChecksumMismatchIsAudited(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	// Corrupt the stored checksum so decryption succeeds but the plaintext
	// no longer matches the record.
	stored, err := fixture.repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	stored.Checksum = strings.Repeat("0", len(stored.Checksum))
	require.NoError(t, fixture.repo.Update(ctx, stored))

	_, err = fixture.useCase.Download(ctx, owner, record.ID, RequestMeta{})
	assert.ErrorIs(t, err, docDomain.ErrIntegrityViolation)

	entry := fixture.trail.lastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.SeverityCritical, entry.Severity)
	_, ok := entry.Details.(auditDomain.IntegrityFailureDetails)
	assert.True(t, ok)
}

func TestDocumentUseCase_DownloadNotFound(t *testing.T) {
	fixture := newVaultFixture(t)

	_, err := fixture.useCase.Download(
		context.Background(),
		testPrincipal(access.RoleUser),
		uuid.Must(uuid.NewV7()),
		RequestMeta{},
	)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentUseCase_Delete(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, fixture.useCase.Delete(ctx, owner, record.ID, "estate settled", RequestMeta{}))

	_, err = fixture.repo.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = fixture.store.Get(ctx, record.StorageKey)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	deletes := fixture.trail.byEventType(auditDomain.EventDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, auditDomain.SeverityWarning, deletes[0].Severity)

	details, ok := deletes[0].Details.(auditDomain.DeleteDetails)
	require.True(t, ok)
	assert.Equal(t, "estate settled", details.Reason)
}

func TestDocumentUseCase_Archive(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)
	originalKey := record.StorageKey

	before := time.Now().UTC()
	archived, err := fixture.useCase.Archive(ctx, owner, record.ID, 90, RequestMeta{})
	require.NoError(t, err)

	assert.True(t, archived.Archived)
	assert.True(t, strings.HasPrefix(archived.StorageKey, "archive/"), "payload moved under archive prefix")

	// The retention clock restarts from the archive time.
	assert.False(t, archived.RetentionExpiresAt.Before(before.AddDate(0, 0, 90)))
	assert.False(t, archived.RetentionExpiresAt.After(time.Now().UTC().AddDate(0, 0, 90)))

	// The payload lives at the archive key, not the original.
	_, err = fixture.store.Get(ctx, archived.StorageKey)
	assert.NoError(t, err)
	_, err = fixture.store.Get(ctx, originalKey)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Archived documents remain downloadable.
	result, err := fixture.useCase.Download(ctx, owner, record.ID, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, testUpload().Content, result.Content)

	// Re-archiving is a no-op, even with a different retention period.
	again, err := fixture.useCase.Archive(ctx, owner, record.ID, 30, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, archived.StorageKey, again.StorageKey)
	assert.Equal(t, archived.RetentionExpiresAt, again.RetentionExpiresAt)
	assert.Len(t, fixture.trail.byEventType(auditDomain.EventArchive), 1)

	details, ok := fixture.trail.byEventType(auditDomain.EventArchive)[0].Details.(auditDomain.ArchiveDetails)
	require.True(t, ok)
	assert.Equal(t, archived.RetentionExpiresAt, details.RetentionExpiresAt)
}

func TestDocumentUseCase_ArchiveDefaultRetention(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	input := testUpload()
	input.Classification = docDomain.ClassificationPersonal
	record, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{})
	require.NoError(t, err)

	// No period given: the classification window applies from now.
	before := time.Now().UTC()
	archived, err := fixture.useCase.Archive(ctx, owner, record.ID, 0, RequestMeta{})
	require.NoError(t, err)

	assert.False(t, archived.RetentionExpiresAt.Before(before.Add(365*24*time.Hour)))
	assert.False(t, archived.RetentionExpiresAt.After(time.Now().UTC().Add(365*24*time.Hour)))
}

func TestDocumentUseCase_GetMetadataAndList(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)
	stranger := testPrincipal(access.RoleUser)

	record, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	got, err := fixture.useCase.GetMetadata(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = fixture.useCase.GetMetadata(ctx, stranger, record.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	records, err := fixture.useCase.List(ctx, owner, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = fixture.useCase.List(ctx, stranger, owner.ID, 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	records, err = fixture.useCase.List(ctx, testPrincipal(access.RoleAdmin), owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDocumentUseCase_RewrapAll(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	contents := make(map[uuid.UUID][]byte)
	for i := 0; i < 5; i++ {
		input := testUpload()
		input.Content = []byte(strings.Repeat("document body ", i+1))
		record, err := fixture.useCase.Upload(ctx, owner, input, RequestMeta{})
		require.NoError(t, err)
		contents[record.ID] = input.Content
	}
	oldVersion := fixture.keyChain.ActiveVersion()

	// Rotate to a successor key; existing payloads stay on the old version.
	newKey(t, true, fixture.keyChain)

	report, err := fixture.useCase.RewrapAll(ctx, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(5), report.Rewrapped)
	assert.Equal(t, fixture.keyChain.ActiveVersion(), report.NewKeyVersion)
	assert.Equal(t, []string{oldVersion}, report.OldKeyVersions)

	for id, want := range contents {
		record, err := fixture.repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, report.NewKeyVersion, record.KeyVersion)

		result, err := fixture.useCase.Download(ctx, owner, id, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, want, result.Content)
	}

	rotations := fixture.trail.byEventType(auditDomain.EventKeyRotation)
	require.Len(t, rotations, 1)
	assert.Equal(t, auditDomain.SystemActor, rotations[0].ActorID)
	details, ok := rotations[0].Details.(auditDomain.KeyRotationDetails)
	require.True(t, ok)
	assert.Equal(t, int64(5), details.RewrappedCount)

	// A second run finds nothing to do and records nothing.
	report, err = fixture.useCase.RewrapAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.Zero(t, report.Rewrapped)
	assert.Len(t, fixture.trail.byEventType(auditDomain.EventKeyRotation), 1)
}

func TestDocumentUseCase_SweepExpired(t *testing.T) {
	fixture := newVaultFixture(t)
	ctx := context.Background()
	owner := testPrincipal(access.RoleUser)

	expired, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)
	current, err := fixture.useCase.Upload(ctx, owner, testUpload(), RequestMeta{})
	require.NoError(t, err)

	// Push the first document past its retention window.
	record, err := fixture.repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	record.RetentionExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, fixture.repo.Update(ctx, record))

	t.Run("dry run", func(t *testing.T) {
		report, err := fixture.useCase.SweepExpired(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.Archived)

		got, err := fixture.repo.GetByID(ctx, expired.ID)
		require.NoError(t, err)
		assert.False(t, got.Archived)
	})

	t.Run("sweep archives expired only", func(t *testing.T) {
		report, err := fixture.useCase.SweepExpired(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.Archived)

		got, err := fixture.repo.GetByID(ctx, expired.ID)
		require.NoError(t, err)
		assert.True(t, got.Archived)

		untouched, err := fixture.repo.GetByID(ctx, current.ID)
		require.NoError(t, err)
		assert.False(t, untouched.Archived)

		archives := fixture.trail.byEventType(auditDomain.EventArchive)
		require.Len(t, archives, 1)
		assert.Equal(t, auditDomain.SystemActor, archives[0].ActorID)
	})
}
