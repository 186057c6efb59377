// Package repository provides environment persistence for PostgreSQL and MySQL.
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

// PostgreSQLEnvironmentRepository handles environment persistence for PostgreSQL.
type PostgreSQLEnvironmentRepository struct {
	db *sql.DB
}

// NewPostgreSQLEnvironmentRepository creates a new PostgreSQLEnvironmentRepository.
func NewPostgreSQLEnvironmentRepository(db *sql.DB) *PostgreSQLEnvironmentRepository {
	return &PostgreSQLEnvironmentRepository{db: db}
}

// Create inserts a new environment.
func (r *PostgreSQLEnvironmentRepository) Create(ctx context.Context, env *domain.Environment) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO environments (id, name, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(ctx, query, env.ID, env.Name, env.Description, env.CreatedAt, env.UpdatedAt)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrEnvironmentAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create environment")
	}
	return nil
}

// GetByID retrieves an environment by id.
func (r *PostgreSQLEnvironmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, description, created_at, updated_at
			  FROM environments WHERE id = $1`

	var env domain.Environment
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&env.ID, &env.Name, &env.Description, &env.CreatedAt, &env.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get environment by id")
	}

	return &env, nil
}

// GetByName retrieves an environment by its unique name.
func (r *PostgreSQLEnvironmentRepository) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, description, created_at, updated_at
			  FROM environments WHERE name = $1`

	var env domain.Environment
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&env.ID, &env.Name, &env.Description, &env.CreatedAt, &env.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get environment by name")
	}

	return &env, nil
}

// List retrieves all environments ordered by name.
func (r *PostgreSQLEnvironmentRepository) List(ctx context.Context) ([]*domain.Environment, error) {
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
		if err := rows.Scan(&env.ID, &env.Name, &env.Description, &env.CreatedAt, &env.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan environment")
		}
		environments = append(environments, &env)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate environments")
	}

	return environments, nil
}

// Update persists a changed description and updated_at.
func (r *PostgreSQLEnvironmentRepository) Update(ctx context.Context, env *domain.Environment) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE environments SET description = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, env.Description, env.UpdatedAt, env.ID)
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
func (r *PostgreSQLEnvironmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM environments WHERE id = $1`, id)
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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
