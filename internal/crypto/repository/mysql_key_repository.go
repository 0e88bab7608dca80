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

// MySQLKeyRepository implements encryption key persistence for MySQL.
// UUIDs are stored as BINARY(16) and bound as raw bytes.
type MySQLKeyRepository struct {
	db *sql.DB
}

// NewMySQLKeyRepository creates a new MySQL key repository.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}

// Create inserts a new encryption key record in wrapped form.
func (m *MySQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO encryption_keys
			  (id, origin, algorithm, wrapped_material, wrap_nonce, master_key_id, is_active, created_at, superseded_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID[:],
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

// Supersede marks a key inactive and stamps superseded_at.
func (m *MySQLKeyRepository) Supersede(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE encryption_keys SET is_active = FALSE, superseded_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id[:])
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
func (m *MySQLKeyRepository) List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

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
		var idBytes []byte
		var origin, algorithm string
		var masterKeyID sql.NullString

		err := rows.Scan(
			&idBytes,
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

		id, err := uuid.FromBytes(idBytes)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse encryption key id")
		}
		key.ID = id
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
