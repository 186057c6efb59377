package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// MySQLAuditLogRepository implements audit log persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// NewMySQLAuditLogRepository creates a new MySQL audit log repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

// Create inserts a new audit log entry. UUIDs are stored as BINARY(16).
// Participates in the caller's transaction via database.GetTx(). Nil details
// are stored as NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	detailsJSON, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAuditLogRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log id")
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs WHERE id = ?`

	entry, err := scanMySQLAuditLog(querier.QueryRowContext(ctx, query, idBinary))
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
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	conditions, args := buildAuditFilter(filter, func(int) string { return "?" })

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs` + conditions +
		" ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
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
		entry, err := scanMySQLAuditLog(rows)
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
func (m *MySQLAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	query := `SELECT COUNT(*) FROM audit_logs WHERE timestamp < ?`
	if err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count old audit logs")
	}

	return count, nil
}

// DeleteOlderThan removes entries with a timestamp before the cutoff and
// returns the number of rows deleted.
func (m *MySQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM audit_logs WHERE timestamp < ?`
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
func (m *MySQLAuditLogRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit logs")
	}

	return count, nil
}

// CountByAction returns per-action entry counts ordered by count descending.
func (m *MySQLAuditLogRepository) CountByAction(ctx context.Context) ([]auditDomain.ActionCount, error) {
	querier := database.GetTx(ctx, m.db)

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

// scanMySQLAuditLog reads one entry from a row, unmarshaling the BINARY(16)
// id and the details JSON when present.
func scanMySQLAuditLog(row rowScanner) (*auditDomain.AuditLog, error) {
	var entry auditDomain.AuditLog
	var idBinary []byte
	var action string
	var detailsJSON []byte

	err := row.Scan(
		&idBinary,
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

	id, err := uuid.FromBytes(idBinary)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
	}

	entry.ID = id
	entry.Action = auditDomain.Action(action)
	entry.Timestamp = entry.Timestamp.UTC()

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log details")
		}
	}

	return &entry, nil
}
