// Package repository provides variable persistence for PostgreSQL and MySQL.
// Tags are serialized as a JSON array in a text column so both engines store
// them the same way.
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

	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/variables/domain"
)

const variableColumns = `id, environment_id, key, value, is_secret, encrypted, tags, description,
		  rotation_enabled, rotation_period_days, last_rotated, next_rotation, created_at, updated_at`

// PostgreSQLVariableRepository handles variable persistence for PostgreSQL.
type PostgreSQLVariableRepository struct {
	db *sql.DB
}

// NewPostgreSQLVariableRepository creates a new PostgreSQLVariableRepository.
func NewPostgreSQLVariableRepository(db *sql.DB) *PostgreSQLVariableRepository {
	return &PostgreSQLVariableRepository{db: db}
}

// Create inserts a new variable.
func (r *PostgreSQLVariableRepository) Create(ctx context.Context, variable *domain.Variable) error {
	querier := database.GetTx(ctx, r.db)

	tagsJSON, err := marshalTags(variable.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO variables (` + variableColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = querier.ExecContext(
		ctx,
		query,
		variable.ID,
		variable.EnvironmentID,
		variable.Key,
		variable.Value,
		variable.IsSecret,
		variable.Encrypted,
		tagsJSON,
		variable.Description,
		variable.RotationEnabled,
		variable.RotationPeriodDays,
		variable.LastRotated,
		variable.NextRotation,
		variable.CreatedAt,
		variable.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrVariableAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create variable")
	}
	return nil
}

// Update persists every mutable field of an existing variable.
func (r *PostgreSQLVariableRepository) Update(ctx context.Context, variable *domain.Variable) error {
	querier := database.GetTx(ctx, r.db)

	tagsJSON, err := marshalTags(variable.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE variables
			  SET value = $1, is_secret = $2, encrypted = $3, tags = $4, description = $5,
			      rotation_enabled = $6, rotation_period_days = $7, last_rotated = $8,
			      next_rotation = $9, updated_at = $10
			  WHERE id = $11`

	result, err := querier.ExecContext(
		ctx,
		query,
		variable.Value,
		variable.IsSecret,
		variable.Encrypted,
		tagsJSON,
		variable.Description,
		variable.RotationEnabled,
		variable.RotationPeriodDays,
		variable.LastRotated,
		variable.NextRotation,
		variable.UpdatedAt,
		variable.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update variable")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get updated variable count")
	}
	if affected == 0 {
		return domain.ErrVariableNotFound
	}

	return nil
}

// GetByID retrieves a variable by id.
func (r *PostgreSQLVariableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + variableColumns + ` FROM variables WHERE id = $1`

	variable, err := scanVariable(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVariableNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get variable by id")
	}
	return variable, nil
}

// GetByKey retrieves a variable by its environment and key.
func (r *PostgreSQLVariableRepository) GetByKey(
	ctx context.Context,
	environmentID uuid.UUID,
	key string,
) (*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + variableColumns + ` FROM variables WHERE environment_id = $1 AND key = $2`

	variable, err := scanVariable(querier.QueryRowContext(ctx, query, environmentID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVariableNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get variable by key")
	}
	return variable, nil
}

// ListByEnvironment retrieves variables in an environment ordered by key,
// optionally narrowed by the filter.
func (r *PostgreSQLVariableRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	conditions := []string{"environment_id = $1"}
	args := []any{environmentID}

	if filter.KeySearch != "" {
		args = append(args, "%"+filter.KeySearch+"%")
		conditions = append(conditions, fmt.Sprintf("key LIKE $%d", len(args)))
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array of strings, so an exact tag always
		// appears quoted.
		args = append(args, `%"`+filter.Tag+`"%`)
		conditions = append(conditions, fmt.Sprintf("tags LIKE $%d", len(args)))
	}
	if filter.SecretsOnly {
		conditions = append(conditions, "is_secret = TRUE")
	}

	query := `SELECT ` + variableColumns + ` FROM variables WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY key`

	return r.queryVariables(ctx, querier, query, args...)
}

// ListDue retrieves rotation-enabled secret variables in an environment whose
// next_rotation is unset or has passed. With includeNonExpired it returns
// every rotation-enabled secret regardless of due time.
func (r *PostgreSQLVariableRepository) ListDue(
	ctx context.Context,
	environmentID uuid.UUID,
	now time.Time,
	includeNonExpired bool,
) ([]*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + variableColumns + ` FROM variables
			  WHERE environment_id = $1 AND is_secret = TRUE AND rotation_enabled = TRUE`
	args := []any{environmentID}

	if !includeNonExpired {
		query += ` AND (next_rotation IS NULL OR next_rotation <= $2)`
		args = append(args, now)
	}
	query += ` ORDER BY key`

	return r.queryVariables(ctx, querier, query, args...)
}

// SetRotationEnabled bulk-toggles rotation on every secret variable in an
// environment and returns the number of rows changed. When defaultPeriodDays
// is set, variables without a rotation period receive it.
func (r *PostgreSQLVariableRepository) SetRotationEnabled(
	ctx context.Context,
	environmentID uuid.UUID,
	enabled bool,
	defaultPeriodDays *int,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE variables
			  SET rotation_enabled = $1,
			      rotation_period_days = COALESCE(rotation_period_days, $2),
			      updated_at = $3
			  WHERE environment_id = $4 AND is_secret = TRUE`

	result, err := querier.ExecContext(ctx, query, enabled, defaultPeriodDays, now, environmentID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to toggle variable rotation")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get toggled variable count")
	}
	return affected, nil
}

// Delete removes a variable by id.
func (r *PostgreSQLVariableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM variables WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete variable")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get deleted variable count")
	}
	if affected == 0 {
		return domain.ErrVariableNotFound
	}

	return nil
}

func (r *PostgreSQLVariableRepository) queryVariables(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*domain.Variable, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list variables")
	}
	defer func() {
		_ = rows.Close()
	}()

	variables := make([]*domain.Variable, 0)
	for rows.Next() {
		variable, err := scanVariable(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan variable")
		}
		variables = append(variables, variable)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate variables")
	}

	return variables, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanVariable reads one variable from a row, unmarshaling the tags JSON.
func scanVariable(row rowScanner) (*domain.Variable, error) {
	var variable domain.Variable
	var tagsJSON []byte

	err := row.Scan(
		&variable.ID,
		&variable.EnvironmentID,
		&variable.Key,
		&variable.Value,
		&variable.IsSecret,
		&variable.Encrypted,
		&tagsJSON,
		&variable.Description,
		&variable.RotationEnabled,
		&variable.RotationPeriodDays,
		&variable.LastRotated,
		&variable.NextRotation,
		&variable.CreatedAt,
		&variable.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	normalizeVariableTimes(&variable)

	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &variable.Tags); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal variable tags")
		}
	}

	return &variable, nil
}

func normalizeVariableTimes(variable *domain.Variable) {
	variable.CreatedAt = variable.CreatedAt.UTC()
	variable.UpdatedAt = variable.UpdatedAt.UTC()
	if variable.LastRotated != nil {
		t := variable.LastRotated.UTC()
		variable.LastRotated = &t
	}
	if variable.NextRotation != nil {
		t := variable.NextRotation.UTC()
		variable.NextRotation = &t
	}
}

// marshalTags serializes the tag list. A nil slice becomes an empty JSON
// array so the NOT NULL tags column always gets a value.
func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal variable tags")
	}
	return data, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
