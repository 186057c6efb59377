// Package usecase implements installation setup and the master password
// surface: initialize, verify, unlock, and the mutable defaults.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	"github.com/allisson/envguard/internal/database"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/settings/domain"
	appValidation "github.com/allisson/envguard/internal/validation"
)

// saltSize is the random salt length in bytes, hex-encoded for storage.
const saltSize = 16

// minMasterPasswordLength is the minimum accepted master password length.
const minMasterPasswordLength = 8

// InitializeInput contains the input data for store initialization.
type InitializeInput struct {
	ProjectName               string
	MasterPassword            string
	DefaultEnvironment        string
	RotationDefaultPeriodDays int
	AuditRetentionDays        int
	Actor                     auditDomain.Actor
}

// UseCase defines the interface for settings business logic operations.
type UseCase interface {
	Initialize(ctx context.Context, input InitializeInput) (*domain.AppSettings, error)
	Get(ctx context.Context) (*domain.AppSettings, error)
	VerifyMasterPassword(ctx context.Context, password string) error
	Unlock(ctx context.Context, password string) error
	Lock()
	SetDefaultEnvironment(ctx context.Context, name string, actor auditDomain.Actor) error
}

// SettingsRepository interface defines settings repository operations.
type SettingsRepository interface {
	Create(ctx context.Context, settings *domain.AppSettings) error
	Get(ctx context.Context) (*domain.AppSettings, error)
	Update(ctx context.Context, settings *domain.AppSettings) error
}

// EnvironmentGetter resolves environment names.
type EnvironmentGetter interface {
	GetByName(ctx context.Context, name string) (*envDomain.Environment, error)
}

// SettingsUseCase handles settings-related business logic.
type SettingsUseCase struct {
	txManager database.TxManager
	repo      SettingsRepository
	envRepo   EnvironmentGetter
	hasher    cryptoService.PasswordHasher
	deriver   cryptoService.KeyDeriver
	session   *cryptoDomain.MasterKeySession
	auditLog  auditUsecase.AuditLogUseCase
	now       func() time.Time
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(
	txManager database.TxManager,
	repo SettingsRepository,
	envRepo EnvironmentGetter,
	hasher cryptoService.PasswordHasher,
	deriver cryptoService.KeyDeriver,
	session *cryptoDomain.MasterKeySession,
	auditLog auditUsecase.AuditLogUseCase,
) *SettingsUseCase {
	return &SettingsUseCase{
		txManager: txManager,
		repo:      repo,
		envRepo:   envRepo,
		hasher:    hasher,
		deriver:   deriver,
		session:   session,
		auditLog:  auditLog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateInitializeInput(input InitializeInput) error {
	return appValidation.WrapValidationError(validation.Errors{
		"project_name": validation.Validate(input.ProjectName, validation.Required, appValidation.NotBlank),
		"master_password": validation.Validate(input.MasterPassword,
			validation.Required,
			appValidation.PasswordStrength{MinLength: minMasterPasswordLength},
		),
		"rotation_default_period_days": validation.Validate(input.RotationDefaultPeriodDays, appValidation.RotationPeriod{}),
		"audit_retention_days": validation.Validate(input.AuditRetentionDays,
			validation.Min(1),
		),
	}.Filter())
}

// Initialize sets up a fresh store: generates the per-installation salt,
// hashes the master password, and persists the settings row with one 'create'
// audit entry. Fails on an already initialized store.
func (u *SettingsUseCase) Initialize(ctx context.Context, input InitializeInput) (*domain.AppSettings, error) {
	if err := validateInitializeInput(input); err != nil {
		return nil, err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}

	digest, err := u.hasher.Hash(input.MasterPassword)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash master password")
	}

	now := u.now()
	settings := &domain.AppSettings{
		ProjectName:               input.ProjectName,
		Salt:                      hex.EncodeToString(salt),
		MasterPasswordDigest:      digest,
		DefaultEnvironment:        input.DefaultEnvironment,
		RotationDefaultPeriodDays: input.RotationDefaultPeriodDays,
		AuditRetentionDays:        input.AuditRetentionDays,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, settings); err != nil {
			return err
		}

		_, err := u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionCreate,
			EntityType: auditDomain.EntitySettings,
			EntityID:   settings.ProjectName,
			Actor:      input.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Get retrieves the settings row.
func (u *SettingsUseCase) Get(ctx context.Context) (*domain.AppSettings, error) {
	return u.repo.Get(ctx)
}

// VerifyMasterPassword checks the password against the stored digest without
// touching the session. A mismatch is an authentication failure, never a crash.
func (u *SettingsUseCase) VerifyMasterPassword(ctx context.Context, password string) error {
	settings, err := u.repo.Get(ctx)
	if err != nil {
		return err
	}

	if !u.hasher.Verify(password, settings.MasterPasswordDigest) {
		return cryptoDomain.ErrInvalidMasterPassword
	}
	return nil
}

// Unlock verifies the password, derives the master key from it and the stored
// salt, and installs the key into the session. A wrong password fails before
// anything is derived or installed; repeated unlocks with the correct password
// are no-ops.
func (u *SettingsUseCase) Unlock(ctx context.Context, password string) error {
	settings, err := u.repo.Get(ctx)
	if err != nil {
		return err
	}

	if !u.hasher.Verify(password, settings.MasterPasswordDigest) {
		return cryptoDomain.ErrInvalidMasterPassword
	}

	salt, err := hex.DecodeString(settings.Salt)
	if err != nil {
		return apperrors.Wrap(err, "failed to decode stored salt")
	}

	key := u.deriver.DeriveKey(password, salt)
	defer cryptoDomain.Zero(key)

	return u.session.Set(key)
}

// Lock clears the session key material.
func (u *SettingsUseCase) Lock() {
	u.session.Clear()
}

// SetDefaultEnvironment points the installation at an existing environment and
// records the change in the audit trail.
func (u *SettingsUseCase) SetDefaultEnvironment(ctx context.Context, name string, actor auditDomain.Actor) error {
	if _, err := u.envRepo.GetByName(ctx, name); err != nil {
		return err
	}

	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		settings, err := u.repo.Get(ctx)
		if err != nil {
			return err
		}

		oldDefault := settings.DefaultEnvironment
		settings.DefaultEnvironment = name
		settings.UpdatedAt = u.now()

		if err := u.repo.Update(ctx, settings); err != nil {
			return err
		}

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionUpdate,
			EntityType: auditDomain.EntitySettings,
			EntityID:   settings.ProjectName,
			OldValue:   oldDefault,
			NewValue:   name,
			Actor:      actor,
		})
		return err
	})
}
