package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/database"
	"github.com/allisson/envguard/internal/environments/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// MySQLEnvironmentRepository handles environment persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLEnvironmentRepository struct {
	db *sql.DB
}

// NewMySQLEnvironmentRepository creates a new MySQLEnvironmentRepository.
func NewMySQLEnvironmentRepository(db *sql.DB) *MySQLEnvironmentRepository {
	return &MySQLEnvironmentRepository{db: db}
}

// Create inserts a new environment.
func (r *MySQLEnvironmentRepository) Create(ctx context.Context, env *domain.Environment) error {
	querier := database.GetTx(ctx, r.db)

	id, err := env.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `INSERT INTO environments (id, name, description, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, env.Name, env.Description, env.CreatedAt, env.UpdatedAt)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrEnvironmentAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create environment")
	}
	return nil
}

// GetByID retrieves an environment by id.
func (r *MySQLEnvironmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `SELECT id, name, description, created_at, updated_at
			  FROM environments WHERE id = ?`

	return scanMySQLEnvironment(querier.QueryRowContext(ctx, query, idBinary), "failed to get environment by id")
}

// GetByName retrieves an environment by its unique name.
func (r *MySQLEnvironmentRepository) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, description, created_at, updated_at
			  FROM environments WHERE name = ?`

	return scanMySQLEnvironment(querier.QueryRowContext(ctx, query, name), "failed to get environment by name")
}

// List retrieves all environments ordered by name.
func (r *MySQLEnvironmentRepository) List(ctx context.Context) ([]*domain.Environment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, description, created_at, updated_at
			  FROM environments ORDER BY name`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list environments")
	}
	defer func() {
		_ = rows.Close()
	}()

	environments := make([]*domain.Environment, 0)
	for rows.Next() {
		var env domain.Environment
		var idBinary []byte
		if err := rows.Scan(&idBinary, &env.Name, &env.Description, &env.CreatedAt, &env.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan environment")
		}
		envID, err := uuid.FromBytes(idBinary)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal environment id")
		}
		env.ID = envID
		environments = append(environments, &env)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate environments")
	}

	return environments, nil
}

// Update persists a changed description and updated_at.
func (r *MySQLEnvironmentRepository) Update(ctx context.Context, env *domain.Environment) error {
	querier := database.GetTx(ctx, r.db)

	id, err := env.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal environment id")
	}

	query := `UPDATE environments SET description = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, env.Description, env.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update environment")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get updated environment count")
	}
	if affected == 0 {
		return domain.ErrEnvironmentNotFound
	}

	return nil
}

// Delete removes an environment. Variables are removed by the foreign key
// cascade defined in the schema.
func (r *MySQLEnvironmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal environment id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM environments WHERE id = ?`, idBinary)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete environment")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get deleted environment count")
	}
	if affected == 0 {
		return domain.ErrEnvironmentNotFound
	}

	return nil
}

func scanMySQLEnvironment(row *sql.Row, failMessage string) (*domain.Environment, error) {
	var env domain.Environment
	var idBinary []byte

	err := row.Scan(&idBinary, &env.Name, &env.Description, &env.CreatedAt, &env.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, apperrors.Wrap(err, failMessage)
	}

	id, err := uuid.FromBytes(idBinary)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal environment id")
	}
	env.ID = id

	return &env, nil
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
