// Package repository provides persistence for encryption keys. Only wrapped
// key material ever reaches these repositories.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	"github.com/keeplegacy/docvault/internal/database"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// PostgreSQLKeyRepository implements encryption key persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL key repository.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}

// Create inserts a new encryption key record. The key's plaintext material
// is ignored; only the wrapped form is stored.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO encryption_keys
			  (id, origin, algorithm, wrapped_material, wrap_nonce, master_key_id, is_active, created_at, superseded_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		string(key.Origin),
		string(key.Algorithm),
		key.WrappedMaterial,
		key.WrapNonce,
		nullString(key.MasterKeyID),
		key.IsActive,
		key.CreatedAt,
		key.SupersededAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create encryption key")
	}

	return nil
}

// Supersede marks a key inactive and stamps superseded_at. The wrapped
// material is untouched so documents on this key stay decryptable.
func (p *PostgreSQLKeyRepository) Supersede(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE encryption_keys SET is_active = FALSE, superseded_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to supersede encryption key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check superseded rows")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// List returns all encryption keys, oldest first.
func (p *PostgreSQLKeyRepository) List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, origin, algorithm, wrapped_material, wrap_nonce, master_key_id, is_active, created_at, superseded_at
			  FROM encryption_keys
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]*cryptoDomain.EncryptionKey, 0)
	for rows.Next() {
		var key cryptoDomain.EncryptionKey
		var origin, algorithm string
		var masterKeyID sql.NullString

		err := rows.Scan(
			&key.ID,
			&origin,
			&algorithm,
			&key.WrappedMaterial,
			&key.WrapNonce,
			&masterKeyID,
			&key.IsActive,
			&key.CreatedAt,
			&key.SupersededAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan encryption key")
		}

		key.Origin = cryptoDomain.KeyOrigin(origin)
		key.Algorithm = cryptoDomain.Algorithm(algorithm)
		if masterKeyID.Valid {
			key.MasterKeyID = masterKeyID.String
		}

		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate encryption keys")
	}

	return keys, nil
}

// nullString maps an empty string to database NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
