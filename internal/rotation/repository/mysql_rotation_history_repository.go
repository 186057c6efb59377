package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/rotation/domain"
)

// MySQLRotationHistoryRepository handles rotation history persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLRotationHistoryRepository struct {
	db *sql.DB
}

// NewMySQLRotationHistoryRepository creates a new MySQLRotationHistoryRepository.
func NewMySQLRotationHistoryRepository(db *sql.DB) *MySQLRotationHistoryRepository {
	return &MySQLRotationHistoryRepository{db: db}
}

// Create inserts a new rotation history entry.
func (r *MySQLRotationHistoryRepository) Create(ctx context.Context, entry *domain.RotationHistoryEntry) error {
	querier := database.GetTx(ctx, r.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal rotation history id")
	}
	variableID, err := entry.VariableID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal rotation history variable_id")
	}

	query := `INSERT INTO rotation_history (` + rotationHistoryColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		variableID,
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
func (r *MySQLRotationHistoryRepository) ListByVariable(
	ctx context.Context,
	variableID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	variableIDBinary, err := variableID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal rotation history variable_id")
	}

	query := `SELECT ` + rotationHistoryColumns + ` FROM rotation_history
			  WHERE variable_id = ? ORDER BY rotated_at DESC LIMIT ?`

	return r.queryEntries(ctx, querier, query, variableIDBinary, limit)
}

// ListByEnvironment retrieves the rotation history of every variable in an
// environment, newest-first.
func (r *MySQLRotationHistoryRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	querier := database.GetTx(ctx, r.db)

	environmentIDBinary, err := environmentID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `SELECT h.id, h.variable_id, h.rotated_at, h.old_value_fingerprint,
			         h.new_value_fingerprint, h.rotated_by, h.reason
			  FROM rotation_history h
			  JOIN variables v ON v.id = h.variable_id
			  WHERE v.environment_id = ?
			  ORDER BY h.rotated_at DESC LIMIT ?`

	return r.queryEntries(ctx, querier, query, environmentIDBinary, limit)
}

func (r *MySQLRotationHistoryRepository) queryEntries(
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
		var idBinary, variableIDBinary []byte

		err := rows.Scan(
			&idBinary,
			&variableIDBinary,
			&entry.RotatedAt,
			&entry.OldValueFingerprint,
			&entry.NewValueFingerprint,
			&entry.RotatedBy,
			&entry.Reason,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan rotation history entry")
		}

		id, err := uuid.FromBytes(idBinary)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal rotation history id")
		}
		variableID, err := uuid.FromBytes(variableIDBinary)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal rotation history variable_id")
		}

		entry.ID = id
		entry.VariableID = variableID
		entry.RotatedAt = entry.RotatedAt.UTC()
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate rotation history")
	}

	return entries, nil
}
