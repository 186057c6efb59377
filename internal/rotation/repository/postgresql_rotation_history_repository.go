// Package repository provides rotation history persistence for PostgreSQL and
// MySQL. History rows are insert-only and disappear with their variable via
// the schema cascade.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/rotation/domain"
)

const rotationHistoryColumns = `id, variable_id, rotated_at, old_value_fingerprint,
		  new_value_fingerprint, rotated_by, reason`

// PostgreSQLRotationHistoryRepository handles rotation history persistence for PostgreSQL.
type PostgreSQLRotationHistoryRepository struct {
	db *sql.DB
}

// NewPostgreSQLRotationHistoryRepository creates a new PostgreSQLRotationHistoryRepository.
func NewPostgreSQLRotationHistoryRepository(db *sql.DB) *PostgreSQLRotationHistoryRepository {
	return &PostgreSQLRotationHistoryRepository{db: db}
}

// Create inserts a new rotation history entry.
func (r *PostgreSQLRotationHistoryRepository) Create(ctx context.Context, entry *domain.RotationHistoryEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO rotation_history (` + rotationHistoryColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.VariableID,
		entry.RotatedAt,
		entry.OldValueFingerprint,
		entry.NewValueFingerprint,
		entry.RotatedBy,
		entry.Reason,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create rotation history entry")
	}
	return nil
}

// ListByVariable retrieves a variable's rotation history newest-first.
func (r *PostgreSQLRotationHistoryRepository) ListByVariable(
	ctx context.Context,
	variableID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + rotationHistoryColumns + ` FROM rotation_history
			  WHERE variable_id = $1 ORDER BY rotated_at DESC LIMIT $2`

	return r.queryEntries(ctx, querier, query, variableID, limit)
}

// ListByEnvironment retrieves the rotation history of every variable in an
// environment, newest-first.
func (r *PostgreSQLRotationHistoryRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT h.id, h.variable_id, h.rotated_at, h.old_value_fingerprint,
			         h.new_value_fingerprint, h.rotated_by, h.reason
			  FROM rotation_history h
			  JOIN variables v ON v.id = h.variable_id
			  WHERE v.environment_id = $1
			  ORDER BY h.rotated_at DESC LIMIT $2`

	return r.queryEntries(ctx, querier, query, environmentID, limit)
}

func (r *PostgreSQLRotationHistoryRepository) queryEntries(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.RotationHistoryEntry, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rotation history")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*domain.RotationHistoryEntry, 0)
	for rows.Next() {
		var entry domain.RotationHistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.VariableID,
			&entry.RotatedAt,
			&entry.OldValueFingerprint,
			&entry.NewValueFingerprint,
			&entry.RotatedBy,
			&entry.Reason,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan rotation history entry")
		}
		entry.RotatedAt = entry.RotatedAt.UTC()
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate rotation history")
	}

	return entries, nil
}
