// Package repository implements append-only audit log persistence for
// PostgreSQL and MySQL databases.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	"github.com/keeplegacy/docvault/internal/database"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// PostgreSQLAuditLogRepository implements audit entry persistence for
// PostgreSQL. Entries are append-only: there is no update operation, and
// deletion is restricted to rows past their retention window.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

const postgresAuditColumns = `id, timestamp, event_type, severity, actor_id, resource_id,
		resource_type, source_ip, user_agent, request_id, details,
		contains_pii, contains_phi, jurisdictions, key_version, signature, prev_signature, retention_expires_at`

// Create inserts a new audit entry. The entry must already be signed.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := auditDomain.MarshalDetails(entry.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry details")
	}

	jurisdictionsJSON, err := json.Marshal(entry.Flags.Jurisdictions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry jurisdictions")
	}

	query := `INSERT INTO audit_logs (` + postgresAuditColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Timestamp,
		string(entry.EventType),
		string(entry.Severity),
		entry.ActorID,
		entry.ResourceID,
		entry.ResourceType,
		entry.SourceIP,
		entry.UserAgent,
		entry.RequestID,
		detailsJSON,
		entry.Flags.ContainsPII,
		entry.Flags.ContainsPHI,
		jurisdictionsJSON,
		entry.KeyVersion,
		entry.Signature,
		entry.PrevSignature,
		entry.RetentionExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

func scanPostgresAuditEntry(scanner interface{ Scan(...any) error }) (*auditDomain.AuditLogEntry, error) {
	var entry auditDomain.AuditLogEntry
	var eventType, severity string
	var detailsJSON, jurisdictionsJSON []byte

	err := scanner.Scan(
		&entry.ID,
		&entry.Timestamp,
		&eventType,
		&severity,
		&entry.ActorID,
		&entry.ResourceID,
		&entry.ResourceType,
		&entry.SourceIP,
		&entry.UserAgent,
		&entry.RequestID,
		&detailsJSON,
		&entry.Flags.ContainsPII,
		&entry.Flags.ContainsPHI,
		&jurisdictionsJSON,
		&entry.KeyVersion,
		&entry.Signature,
		&entry.PrevSignature,
		&entry.RetentionExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	entry.EventType = auditDomain.EventType(eventType)
	entry.Severity = auditDomain.Severity(severity)

	details, err := auditDomain.UnmarshalDetails(detailsJSON)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit entry details")
	}
	entry.Details = details

	if jurisdictionsJSON != nil {
		if err := json.Unmarshal(jurisdictionsJSON, &entry.Flags.Jurisdictions); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry jurisdictions")
		}
	}

	return &entry, nil
}

// buildPostgresFilter renders a QueryFilter into a WHERE clause with numbered
// placeholders starting at $1. Returns the clause (possibly empty) and args.
func buildPostgresFilter(filter auditDomain.QueryFilter) (string, []any) {
	conditions := make([]string, 0)
	args := make([]any, 0)

	placeholder := func() string {
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.EventTypes) > 0 {
		holders := make([]string, 0, len(filter.EventTypes))
		for _, et := range filter.EventTypes {
			args = append(args, string(et))
			holders = append(holders, placeholder())
		}
		conditions = append(conditions, "event_type IN ("+strings.Join(holders, ", ")+")")
	}
	if len(filter.Severities) > 0 {
		holders := make([]string, 0, len(filter.Severities))
		for _, s := range filter.Severities {
			args = append(args, string(s))
			holders = append(holders, placeholder())
		}
		conditions = append(conditions, "severity IN ("+strings.Join(holders, ", ")+")")
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		conditions = append(conditions, "actor_id = "+placeholder())
	}
	if filter.ResourceID != nil {
		args = append(args, *filter.ResourceID)
		conditions = append(conditions, "resource_id = "+placeholder())
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		conditions = append(conditions, "resource_type = "+placeholder())
	}
	if filter.ContainsPII != nil {
		args = append(args, *filter.ContainsPII)
		conditions = append(conditions, "contains_pii = "+placeholder())
	}
	if filter.ContainsPHI != nil {
		args = append(args, *filter.ContainsPHI)
		conditions = append(conditions, "contains_phi = "+placeholder())
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "timestamp >= "+placeholder())
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "timestamp <= "+placeholder())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves audit entries matching the filter ordered by timestamp
// descending (newest first) with pagination. Returns empty slice if none match.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.QueryFilter,
	offset, limit int,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildPostgresFilter(filter)
	query := fmt.Sprintf(
		`SELECT `+postgresAuditColumns+` FROM audit_logs%s ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLogEntry, 0)
	for rows.Next() {
		entry, err := scanPostgresAuditEntry(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// Count returns how many audit entries match the filter.
func (p *PostgreSQLAuditLogRepository) Count(ctx context.Context, filter auditDomain.QueryFilter) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildPostgresFilter(filter)
	query := `SELECT COUNT(*) FROM audit_logs` + where

	var count int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries")
	}

	return count, nil
}

// OldestTimestamp returns the timestamp of the oldest entry matching the
// filter, or nil when nothing matches.
func (p *PostgreSQLAuditLogRepository) OldestTimestamp(
	ctx context.Context,
	filter auditDomain.QueryFilter,
) (*time.Time, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildPostgresFilter(filter)
	query := `SELECT MIN(timestamp) FROM audit_logs` + where

	var oldest sql.NullTime
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&oldest); err != nil {
		return nil, apperrors.Wrap(err, "failed to find oldest audit entry")
	}
	if !oldest.Valid {
		return nil, nil
	}

	ts := oldest.Time.UTC()
	return &ts, nil
}

// ListChain retrieves audit entries in insertion order (oldest first) with
// pagination, for signature chain verification.
func (p *PostgreSQLAuditLogRepository) ListChain(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresAuditColumns + ` FROM audit_logs ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit chain")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLogEntry, 0)
	for rows.Next() {
		entry, err := scanPostgresAuditEntry(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit chain")
	}

	return entries, nil
}

// GetLastSignature returns the signature of the newest entry, or nil when the
// trail is empty.
func (p *PostgreSQLAuditLogRepository) GetLastSignature(ctx context.Context) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	var signature []byte
	query := `SELECT signature FROM audit_logs ORDER BY id DESC LIMIT 1`
	err := querier.QueryRowContext(ctx, query).Scan(&signature)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to get last audit signature")
	}

	return signature, nil
}

// CountExpired returns how many entries are past their retention window.
func (p *PostgreSQLAuditLogRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	query := `SELECT COUNT(*) FROM audit_logs WHERE retention_expires_at <= $1`
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired audit entries")
	}

	return count, nil
}

// DeleteExpired removes entries past their retention window and returns how
// many rows were deleted. This is the only delete path the trail allows.
func (p *PostgreSQLAuditLogRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM audit_logs WHERE retention_expires_at <= $1`
	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired audit entries")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return deleted, nil
}
