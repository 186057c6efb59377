// Package repository provides audit log persistence for PostgreSQL and MySQL.
// Entries are insert-only; the only statement that removes rows is the
// retention purge.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// PostgreSQLAuditLogRepository implements audit log persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

const auditLogColumns = `id, timestamp, action, entity_type, entity_id, old_value, new_value,
		  user_id, user_name, ip_address, details, fingerprint`

// Create inserts a new audit log entry. Participates in the caller's
// transaction via database.GetTx(). Nil details are stored as NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Timestamp,
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
		entry.UserID,
		entry.UserName,
		entry.IPAddress,
		detailsJSON,
		entry.Fingerprint,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}

	return nil
}

// Get retrieves one audit log entry by id.
func (p *PostgreSQLAuditLogRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE id = $1`

	entry, err := scanAuditLog(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrAuditLogNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get audit log")
	}

	return entry, nil
}

// List retrieves entries matching the filter ordered by timestamp descending
// (newest first). Returns an empty slice when nothing matches.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	conditions, args := buildAuditFilter(filter, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs` + conditions +
		fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return entries, nil
}

// CountOlderThan counts entries with a timestamp before the cutoff.
func (p *PostgreSQLAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	query := `SELECT COUNT(*) FROM audit_logs WHERE timestamp < $1`
	if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count old audit logs")
	}

	return count, nil
}

// DeleteOlderThan removes entries with a timestamp before the cutoff and
// returns the number of rows deleted.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM audit_logs WHERE timestamp < $1`
	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete old audit logs")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get deleted audit log count")
	}

	return deleted, nil
}

// Count returns the total number of entries.
func (p *PostgreSQLAuditLogRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}

	return count, nil
}

// CountByAction returns per-action entry counts ordered by count descending.
func (p *PostgreSQLAuditLogRepository) CountByAction(ctx context.Context) ([]auditDomain.ActionCount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT action, COUNT(*) FROM audit_logs GROUP BY action ORDER BY COUNT(*) DESC`
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count audit logs by action")
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make([]auditDomain.ActionCount, 0)
	for rows.Next() {
		var action string
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log action count")
		}
		counts = append(counts, auditDomain.ActionCount{Action: auditDomain.Action(action), Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit log action counts")
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAuditLog reads one entry from a row, unmarshaling details when present.
func scanAuditLog(row rowScanner) (*auditDomain.AuditLog, error) {
	var entry auditDomain.AuditLog
	var action string
	var detailsJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.Timestamp,
		&action,
		&entry.EntityType,
		&entry.EntityID,
		&entry.OldValue,
		&entry.NewValue,
		&entry.UserID,
		&entry.UserName,
		&entry.IPAddress,
		&detailsJSON,
		&entry.Fingerprint,
	)
	if err != nil {
		return nil, err
	}

	entry.Action = auditDomain.Action(action)
	entry.Timestamp = entry.Timestamp.UTC()

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log details")
		}
	}

	return &entry, nil
}

// marshalDetails serializes the details map, keeping nil as database NULL.
func marshalDetails(details map[string]string) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log details")
	}
	return data, nil
}

// buildAuditFilter renders the WHERE clause for a filter. The placeholder
// function maps the 1-based argument position to the driver's syntax.
func buildAuditFilter(filter auditDomain.Filter, placeholder func(int) string) (string, []any) {
	var conditions []string
	var args []any

	add := func(column string, op string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s %s", column, op, placeholder(len(args))))
	}

	if filter.Action != "" {
		add("action", "=", string(filter.Action))
	}
	if filter.EntityType != "" {
		add("entity_type", "=", filter.EntityType)
	}
	if filter.EntityID != "" {
		add("entity_id", "=", filter.EntityID)
	}
	if filter.Start != nil {
		add("timestamp", ">=", *filter.Start)
	}
	if filter.End != nil {
		add("timestamp", "<=", *filter.End)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
