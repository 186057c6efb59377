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

// MySQLSettingsRepository handles settings persistence for MySQL.
type MySQLSettingsRepository struct {
	db *sql.DB
}

// NewMySQLSettingsRepository creates a new MySQLSettingsRepository.
func NewMySQLSettingsRepository(db *sql.DB) *MySQLSettingsRepository {
	return &MySQLSettingsRepository{db: db}
}

// Create inserts the settings row. Fails if the store is already initialized.
func (r *MySQLSettingsRepository) Create(ctx context.Context, settings *domain.AppSettings) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO app_settings (id, ` + settingsColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return domain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create settings")
	}
	return nil
}

// Get retrieves the settings row.
func (r *MySQLSettingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + settingsColumns + ` FROM app_settings WHERE id = ?`

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
func (r *MySQLSettingsRepository) Update(ctx context.Context, settings *domain.AppSettings) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE app_settings
			  SET project_name = ?, default_environment = ?, rotation_default_period_days = ?,
			      audit_retention_days = ?, updated_at = ?
			  WHERE id = ?`

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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
