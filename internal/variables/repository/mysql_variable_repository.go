package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/variables/domain"
)

// KEY is a reserved word in MySQL, so the column list quotes it.
const mysqlVariableColumns = "id, environment_id, `key`, value, is_secret, encrypted, tags, description, " +
	"rotation_enabled, rotation_period_days, last_rotated, next_rotation, created_at, updated_at"

// MySQLVariableRepository handles variable persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLVariableRepository struct {
	db *sql.DB
}

// NewMySQLVariableRepository creates a new MySQLVariableRepository.
func NewMySQLVariableRepository(db *sql.DB) *MySQLVariableRepository {
	return &MySQLVariableRepository{db: db}
}

// Create inserts a new variable.
func (r *MySQLVariableRepository) Create(ctx context.Context, variable *domain.Variable) error {
	querier := database.GetTx(ctx, r.db)

	tagsJSON, err := marshalTags(variable.Tags)
	if err != nil {
		return err
	}

	id, environmentID, err := marshalVariableIDs(variable)
	if err != nil {
		return err
	}

	query := `INSERT INTO variables (` + mysqlVariableColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		environmentID,
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
		if isMySQLUniqueViolation(err) {
			return domain.ErrVariableAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create variable")
	}
	return nil
}

// Update persists every mutable field of an existing variable.
func (r *MySQLVariableRepository) Update(ctx context.Context, variable *domain.Variable) error {
	querier := database.GetTx(ctx, r.db)

	tagsJSON, err := marshalTags(variable.Tags)
	if err != nil {
		return err
	}

	id, _, err := marshalVariableIDs(variable)
	if err != nil {
		return err
	}

	query := `UPDATE variables
			  SET value = ?, is_secret = ?, encrypted = ?, tags = ?, description = ?,
			      rotation_enabled = ?, rotation_period_days = ?, last_rotated = ?,
			      next_rotation = ?, updated_at = ?
			  WHERE id = ?`

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
		id,
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
func (r *MySQLVariableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal variable id")
	}

	query := `SELECT ` + mysqlVariableColumns + ` FROM variables WHERE id = ?`

	variable, err := scanMySQLVariable(querier.QueryRowContext(ctx, query, idBinary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVariableNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get variable by id")
	}
	return variable, nil
}

// GetByKey retrieves a variable by its environment and key.
func (r *MySQLVariableRepository) GetByKey(
	ctx context.Context,
	environmentID uuid.UUID,
	key string,
) (*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	environmentIDBinary, err := environmentID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := "SELECT " + mysqlVariableColumns + " FROM variables WHERE environment_id = ? AND `key` = ?"

	variable, err := scanMySQLVariable(querier.QueryRowContext(ctx, query, environmentIDBinary, key))
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
func (r *MySQLVariableRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	environmentIDBinary, err := environmentID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal environment id")
	}

	conditions := []string{"environment_id = ?"}
	args := []any{environmentIDBinary}

	if filter.KeySearch != "" {
		conditions = append(conditions, "`key` LIKE ?")
		args = append(args, "%"+filter.KeySearch+"%")
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array of strings, so an exact tag always
		// appears quoted.
		conditions = append(conditions, "tags LIKE ?")
		args = append(args, `%"`+filter.Tag+`"%`)
	}
	if filter.SecretsOnly {
		conditions = append(conditions, "is_secret = TRUE")
	}

	query := "SELECT " + mysqlVariableColumns + " FROM variables WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY `key`"

	return r.queryVariables(ctx, querier, query, args...)
}

// ListDue retrieves rotation-enabled secret variables in an environment whose
// next_rotation is unset or has passed. With includeNonExpired it returns
// every rotation-enabled secret regardless of due time.
func (r *MySQLVariableRepository) ListDue(
	ctx context.Context,
	environmentID uuid.UUID,
	now time.Time,
	includeNonExpired bool,
) ([]*domain.Variable, error) {
	querier := database.GetTx(ctx, r.db)

	environmentIDBinary, err := environmentID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `SELECT ` + mysqlVariableColumns + ` FROM variables
			  WHERE environment_id = ? AND is_secret = TRUE AND rotation_enabled = TRUE`
	args := []any{environmentIDBinary}

	if !includeNonExpired {
		query += ` AND (next_rotation IS NULL OR next_rotation <= ?)`
		args = append(args, now)
	}
	query += " ORDER BY `key`"

	return r.queryVariables(ctx, querier, query, args...)
}

// SetRotationEnabled bulk-toggles rotation on every secret variable in an
// environment and returns the number of rows changed. When defaultPeriodDays
// is set, variables without a rotation period receive it.
func (r *MySQLVariableRepository) SetRotationEnabled(
	ctx context.Context,
	environmentID uuid.UUID,
	enabled bool,
	defaultPeriodDays *int,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	environmentIDBinary, err := environmentID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `UPDATE variables
			  SET rotation_enabled = ?,
			      rotation_period_days = COALESCE(rotation_period_days, ?),
			      updated_at = ?
			  WHERE environment_id = ? AND is_secret = TRUE`

	result, err := querier.ExecContext(ctx, query, enabled, defaultPeriodDays, now, environmentIDBinary)
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
func (r *MySQLVariableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal variable id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM variables WHERE id = ?`, idBinary)
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

func (r *MySQLVariableRepository) queryVariables(
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
		variable, err := scanMySQLVariable(rows)
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

// scanMySQLVariable reads one variable from a row, unmarshaling the BINARY(16)
// ids and the tags JSON.
func scanMySQLVariable(row rowScanner) (*domain.Variable, error) {
	var variable domain.Variable
	var idBinary, environmentIDBinary []byte
	var tagsJSON []byte

	err := row.Scan(
		&idBinary,
		&environmentIDBinary,
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

	id, err := uuid.FromBytes(idBinary)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal variable id")
	}
	environmentID, err := uuid.FromBytes(environmentIDBinary)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal environment id")
	}
	variable.ID = id
	variable.EnvironmentID = environmentID

	normalizeVariableTimes(&variable)

	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &variable.Tags); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal variable tags")
		}
	}

	return &variable, nil
}

func marshalVariableIDs(variable *domain.Variable) (id, environmentID []byte, err error) {
	id, err = variable.ID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal variable id")
	}
	environmentID, err = variable.EnvironmentID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal environment id")
	}
	return id, environmentID, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
