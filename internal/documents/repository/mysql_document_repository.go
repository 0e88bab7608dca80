package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/database"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// MySQLDocumentRepository implements DocumentRecord persistence for MySQL.
// UUIDs are stored as BINARY(16) and bound as raw bytes.
type MySQLDocumentRepository struct {
	db *sql.DB
}

// NewMySQLDocumentRepository creates a new MySQL DocumentRecord repository.
func NewMySQLDocumentRepository(db *sql.DB) *MySQLDocumentRepository {
	return &MySQLDocumentRepository{db: db}
}

const mysqlDocumentColumns = `id, owner_id, file_name, content_type, classification,
		access_level, storage_key, key_version, checksum, size_bytes, archived,
		created_at, updated_at, last_accessed_at, retention_expires_at`

func scanMySQLDocument(scanner interface{ Scan(...any) error }) (*docDomain.DocumentRecord, error) {
	var record docDomain.DocumentRecord
	var idBytes, ownerIDBytes []byte
	var classification, accessLevel string

	err := scanner.Scan(
		&idBytes,
		&ownerIDBytes,
		&record.FileName,
		&record.ContentType,
		&classification,
		&accessLevel,
		&record.StorageKey,
		&record.KeyVersion,
		&record.Checksum,
		&record.SizeBytes,
		&record.Archived,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.LastAccessedAt,
		&record.RetentionExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse document record id")
	}
	ownerID, err := uuid.FromBytes(ownerIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse document record owner id")
	}

	record.ID = id
	record.OwnerID = ownerID
	record.Classification = docDomain.Classification(classification)
	record.AccessLevel = docDomain.AccessLevel(accessLevel)
	return &record, nil
}

// Create inserts a new DocumentRecord into the MySQL database.
func (m *MySQLDocumentRepository) Create(ctx context.Context, record *docDomain.DocumentRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO document_records (id, owner_id, file_name, content_type, classification,
			  access_level, storage_key, key_version, checksum, size_bytes, archived,
			  created_at, updated_at, last_accessed_at, retention_expires_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID[:],
		record.OwnerID[:],
		record.FileName,
		record.ContentType,
		string(record.Classification),
		string(record.AccessLevel),
		record.StorageKey,
		record.KeyVersion,
		record.Checksum,
		record.SizeBytes,
		record.Archived,
		record.CreatedAt,
		record.UpdatedAt,
		record.LastAccessedAt,
		record.RetentionExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create document record")
	}

	return nil
}

// GetByID retrieves a DocumentRecord by its unique identifier. Returns
// ErrNotFound if no record exists with the given ID.
func (m *MySQLDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDocumentColumns + ` FROM document_records WHERE id = ?`

	record, err := scanMySQLDocument(querier.QueryRowContext(ctx, query, id[:]))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
		}
		return nil, apperrors.Wrap(err, "failed to get document record")
	}

	return record, nil
}

// Update persists the mutable fields of a DocumentRecord. Returns ErrNotFound
// if no record exists with the record's ID.
func (m *MySQLDocumentRepository) Update(ctx context.Context, record *docDomain.DocumentRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE document_records
			  SET file_name = ?, access_level = ?, storage_key = ?, key_version = ?,
			      checksum = ?, archived = ?, updated_at = ?, last_accessed_at = ?,
			      retention_expires_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.FileName,
		string(record.AccessLevel),
		record.StorageKey,
		record.KeyVersion,
		record.Checksum,
		record.Archived,
		record.UpdatedAt,
		record.LastAccessedAt,
		record.RetentionExpiresAt,
		record.ID[:],
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update document record")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}

	return nil
}

// Delete removes a DocumentRecord by its unique identifier. Returns
// ErrNotFound if no record exists with the given ID.
func (m *MySQLDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM document_records WHERE id = ?`, id[:])
	if err != nil {
		return apperrors.Wrap(err, "failed to delete document record")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "document record not found")
	}

	return nil
}

// ListByOwner retrieves document records belonging to an owner ordered by
// created_at descending with pagination. Returns empty slice if none found.
func (m *MySQLDocumentRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDocumentColumns + `
			  FROM document_records
			  WHERE owner_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerID[:], limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list document records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanMySQLDocument(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan document record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate document records")
	}

	return records, nil
}

// ListNotOnKeyVersion retrieves up to limit documents whose payload is still
// encrypted under a key version other than keyVersion, ordered by ID so
// repeated calls make progress through the backlog.
func (m *MySQLDocumentRepository) ListNotOnKeyVersion(
	ctx context.Context,
	keyVersion string,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDocumentColumns + `
			  FROM document_records
			  WHERE key_version <> ?
			  ORDER BY id
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, keyVersion, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list document records by key version")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanMySQLDocument(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan document record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate document records")
	}

	return records, nil
}

// CountNotOnKeyVersion returns how many documents remain encrypted under a
// key version other than keyVersion.
func (m *MySQLDocumentRepository) CountNotOnKeyVersion(ctx context.Context, keyVersion string) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	query := `SELECT COUNT(*) FROM document_records WHERE key_version <> ?`
	if err := querier.QueryRowContext(ctx, query, keyVersion).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count document records by key version")
	}

	return count, nil
}

// ListExpired retrieves up to limit non-archived documents whose retention
// window ended at or before the given time.
func (m *MySQLDocumentRepository) ListExpired(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlDocumentColumns + `
			  FROM document_records
			  WHERE archived = FALSE AND retention_expires_at <= ?
			  ORDER BY retention_expires_at
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired document records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanMySQLDocument(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan document record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate document records")
	}

	return records, nil
}

// CountExpired returns how many non-archived documents are past their
// retention window.
func (m *MySQLDocumentRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	query := `SELECT COUNT(*) FROM document_records WHERE archived = FALSE AND retention_expires_at <= ?`
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired document records")
	}

	return count, nil
}

// UpdateLastAccessed stamps a document's last_accessed_at timestamp.
func (m *MySQLDocumentRepository) UpdateLastAccessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE document_records SET last_accessed_at = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, at, id[:]); err != nil {
		return apperrors.Wrap(err, "failed to update document last accessed timestamp")
	}

	return nil
}
