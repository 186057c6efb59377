// Package repository provides settings persistence for PostgreSQL and MySQL.
// The app_settings table holds a single row with a fixed id.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/settings/domain"
)

// settingsRowID is the fixed primary key of the single settings row.
const settingsRowID = 1

const settingsColumns = `project_name, salt, master_password_digest, default_environment,
		  rotation_default_period_days, audit_retention_days, created_at, updated_at`

// PostgreSQLSettingsRepository handles settings persistence for PostgreSQL.
type PostgreSQLSettingsRepository struct {
	db *sql.DB
}

// NewPostgreSQLSettingsRepository creates a new PostgreSQLSettingsRepository.
func NewPostgreSQLSettingsRepository(db *sql.DB) *PostgreSQLSettingsRepository {
	return &PostgreSQLSettingsRepository{db: db}
}

// Create inserts the settings row. Fails if the store is already initialized.
func (r *PostgreSQLSettingsRepository) Create(ctx context.Context, settings *domain.AppSettings) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO app_settings (id, ` + settingsColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		settingsRowID,
		settings.ProjectName,
		settings.Salt,
		settings.MasterPasswordDigest,
		settings.DefaultEnvironment,
		settings.RotationDefaultPeriodDays,
		settings.AuditRetentionDays,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create settings")
	}
	return nil
}

// Get retrieves the settings row.
func (r *PostgreSQLSettingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + settingsColumns + ` FROM app_settings WHERE id = $1`

	var settings domain.AppSettings
	err := querier.QueryRowContext(ctx, query, settingsRowID).Scan(
		&settings.ProjectName,
		&settings.Salt,
		&settings.MasterPasswordDigest,
		&settings.DefaultEnvironment,
		&settings.RotationDefaultPeriodDays,
		&settings.AuditRetentionDays,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotInitialized
		}
		return nil, apperrors.Wrap(err, "failed to get settings")
	}

	return &settings, nil
}

// Update persists the mutable settings fields.
func (r *PostgreSQLSettingsRepository) Update(ctx context.Context, settings *domain.AppSettings) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE app_settings
			  SET project_name = $1, default_environment = $2, rotation_default_period_days = $3,
			      audit_retention_days = $4, updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		settings.ProjectName,
		settings.DefaultEnvironment,
		settings.RotationDefaultPeriodDays,
		settings.AuditRetentionDays,
		settings.UpdatedAt,
		settingsRowID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update settings")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get updated settings count")
	}
	if affected == 0 {
		return domain.ErrNotInitialized
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
