// Package repository implements document record persistence for PostgreSQL
// and MySQL databases.
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

// PostgreSQLDocumentRepository implements DocumentRecord persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLDocumentRepository struct {
	db *sql.DB
}

// Create inserts a new DocumentRecord into the PostgreSQL database.
func (p *PostgreSQLDocumentRepository) Create(ctx context.Context, record *docDomain.DocumentRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO document_records (id, owner_id, file_name, content_type, classification,
			  access_level, storage_key, key_version, checksum, size_bytes, archived,
			  created_at, updated_at, last_accessed_at, retention_expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.OwnerID,
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

const postgresDocumentColumns = `id, owner_id, file_name, content_type, classification,
		access_level, storage_key, key_version, checksum, size_bytes, archived,
		created_at, updated_at, last_accessed_at, retention_expires_at`

func scanPostgresDocument(scanner interface{ Scan(...any) error }) (*docDomain.DocumentRecord, error) {
	var record docDomain.DocumentRecord
	var classification, accessLevel string

	err := scanner.Scan(
		&record.ID,
		&record.OwnerID,
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

	record.Classification = docDomain.Classification(classification)
	record.AccessLevel = docDomain.AccessLevel(accessLevel)
	return &record, nil
}

// GetByID retrieves a DocumentRecord by its unique identifier. Returns
// ErrNotFound if no record exists with the given ID.
func (p *PostgreSQLDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDocumentColumns + ` FROM document_records WHERE id = $1`

	record, err := scanPostgresDocument(querier.QueryRowContext(ctx, query, id))
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
func (p *PostgreSQLDocumentRepository) Update(ctx context.Context, record *docDomain.DocumentRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE document_records
			  SET file_name = $2, access_level = $3, storage_key = $4, key_version = $5,
			      checksum = $6, archived = $7, updated_at = $8, last_accessed_at = $9,
			      retention_expires_at = $10
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.FileName,
		string(record.AccessLevel),
		record.StorageKey,
		record.KeyVersion,
		record.Checksum,
		record.Archived,
		record.UpdatedAt,
		record.LastAccessedAt,
		record.RetentionExpiresAt,
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
func (p *PostgreSQLDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM document_records WHERE id = $1`, id)
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
func (p *PostgreSQLDocumentRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDocumentColumns + `
			  FROM document_records
			  WHERE owner_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list document records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanPostgresDocument(rows)
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
func (p *PostgreSQLDocumentRepository) ListNotOnKeyVersion(
	ctx context.Context,
	keyVersion string,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDocumentColumns + `
			  FROM document_records
			  WHERE key_version <> $1
			  ORDER BY id
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, keyVersion, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list document records by key version")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanPostgresDocument(rows)
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
func (p *PostgreSQLDocumentRepository) CountNotOnKeyVersion(ctx context.Context, keyVersion string) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	query := `SELECT COUNT(*) FROM document_records WHERE key_version <> $1`
	if err := querier.QueryRowContext(ctx, query, keyVersion).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count document records by key version")
	}

	return count, nil
}

// ListExpired retrieves up to limit non-archived documents whose retention
// window ended at or before the given time.
func (p *PostgreSQLDocumentRepository) ListExpired(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*docDomain.DocumentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresDocumentColumns + `
			  FROM document_records
			  WHERE archived = FALSE AND retention_expires_at <= $1
			  ORDER BY retention_expires_at
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired document records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*docDomain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanPostgresDocument(rows)
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
func (p *PostgreSQLDocumentRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	query := `SELECT COUNT(*) FROM document_records WHERE archived = FALSE AND retention_expires_at <= $1`
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired document records")
	}

	return count, nil
}

// UpdateLastAccessed stamps a document's last_accessed_at timestamp.
func (p *PostgreSQLDocumentRepository) UpdateLastAccessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE document_records SET last_accessed_at = $2 WHERE id = $1`
	if _, err := querier.ExecContext(ctx, query, id, at); err != nil {
		return apperrors.Wrap(err, "failed to update document last accessed timestamp")
	}

	return nil
}

// NewPostgreSQLDocumentRepository creates a new PostgreSQL DocumentRecord repository.
func NewPostgreSQLDocumentRepository(db *sql.DB) *PostgreSQLDocumentRepository {
	return &PostgreSQLDocumentRepository{db: db}
}
