// Package usecase implements the variable lifecycle. Secret values are
// encrypted before anything touches the database, and every mutation commits
// its row change together with exactly one audit entry.
package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditService "github.com/allisson/envguard/internal/audit/service"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	"github.com/allisson/envguard/internal/database"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
	appValidation "github.com/allisson/envguard/internal/validation"
	"github.com/allisson/envguard/internal/variables/domain"
)

// SetVariableInput contains the input data for a variable upsert.
type SetVariableInput struct {
	Environment string
	Key         string
	Value       string
	IsSecret    bool
	Tags        []string
	Description string

	// RotationDays enables periodic rotation with this period. Nil preserves
	// the variable's current rotation settings.
	RotationDays *int

	Actor auditDomain.Actor
}

// SecretStore defines the interface for variable business logic operations.
type SecretStore interface {
	Set(ctx context.Context, input SetVariableInput) (*domain.Variable, error)
	Get(ctx context.Context, environment, key string, reveal bool) (*domain.Variable, error)
	Delete(ctx context.Context, environment, key string, actor auditDomain.Actor) error
	List(ctx context.Context, environment string, filter domain.ListFilter) ([]*domain.Variable, error)
}

// VariableRepository interface defines variable repository operations.
type VariableRepository interface {
	Create(ctx context.Context, variable *domain.Variable) error
	Update(ctx context.Context, variable *domain.Variable) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Variable, error)
	GetByKey(ctx context.Context, environmentID uuid.UUID, key string) (*domain.Variable, error)
	ListByEnvironment(ctx context.Context, environmentID uuid.UUID, filter domain.ListFilter) ([]*domain.Variable, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnvironmentGetter resolves environment names.
type EnvironmentGetter interface {
	GetByName(ctx context.Context, name string) (*envDomain.Environment, error)
}

// SecretStoreUseCase handles variable-related business logic.
type SecretStoreUseCase struct {
	txManager     database.TxManager
	varRepo       VariableRepository
	envRepo       EnvironmentGetter
	session       *cryptoDomain.MasterKeySession
	envelope      cryptoService.Envelope
	fingerprinter auditService.Fingerprinter
	auditLog      auditUsecase.AuditLogUseCase
	now           func() time.Time
}

// NewSecretStoreUseCase creates a new SecretStoreUseCase.
func NewSecretStoreUseCase(
	txManager database.TxManager,
	varRepo VariableRepository,
	envRepo EnvironmentGetter,
	session *cryptoDomain.MasterKeySession,
	envelope cryptoService.Envelope,
	fingerprinter auditService.Fingerprinter,
	auditLog auditUsecase.AuditLogUseCase,
) *SecretStoreUseCase {
	return &SecretStoreUseCase{
		txManager:     txManager,
		varRepo:       varRepo,
		envRepo:       envRepo,
		session:       session,
		envelope:      envelope,
		fingerprinter: fingerprinter,
		auditLog:      auditLog,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func validateSetVariableInput(input SetVariableInput) error {
	err := appValidation.WrapValidationError(validation.Errors{
		"environment":   validation.Validate(input.Environment, validation.Required),
		"key":           validation.Validate(input.Key, validation.Required, appValidation.Identifier, validation.Length(1, 128)),
		"description":   validation.Validate(input.Description, validation.Length(0, 500)),
		"rotation_days": validation.Validate(input.RotationDays, appValidation.RotationPeriod{}),
	}.Filter())
	if err != nil {
		return err
	}

	if input.RotationDays != nil && !input.IsSecret {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rotation applies only to secret variables")
	}
	return nil
}

// Set creates or updates the variable identified by (environment, key).
//
// For secrets the value is encrypted before any persistence step, so a missing
// session key or an encryption failure aborts the operation with no partial
// write. The row mutation and its audit entry commit in one transaction; the
// audit pre/post images hold ciphertext for secrets, never plaintext.
func (u *SecretStoreUseCase) Set(ctx context.Context, input SetVariableInput) (*domain.Variable, error) {
	if err := validateSetVariableInput(input); err != nil {
		return nil, err
	}

	env, err := u.envRepo.GetByName(ctx, input.Environment)
	if err != nil {
		return nil, err
	}

	storedValue := input.Value
	if input.IsSecret {
		key, err := u.session.Acquire()
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(key)

		storedValue, err = u.envelope.Encrypt(input.Value, key)
		if err != nil {
			return nil, err
		}
	}

	now := u.now()
	variable := &domain.Variable{
		ID:            uuid.Must(uuid.NewV7()),
		EnvironmentID: env.ID,
		Key:           input.Key,
		Value:         storedValue,
		IsSecret:      input.IsSecret,
		Encrypted:     input.IsSecret,
		Tags:          input.Tags,
		Description:   input.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	action := auditDomain.ActionCreate
	oldValue := ""

	existing, err := u.varRepo.GetByKey(ctx, env.ID, input.Key)
	switch {
	case err == nil:
		// Upsert: keep the row's identity and creation time.
		action = auditDomain.ActionUpdate
		oldValue = existing.Value
		variable.ID = existing.ID
		variable.CreatedAt = existing.CreatedAt
		variable.RotationEnabled = existing.RotationEnabled
		variable.RotationPeriodDays = existing.RotationPeriodDays
		variable.LastRotated = existing.LastRotated
		variable.NextRotation = existing.NextRotation
	case apperrors.Is(err, domain.ErrVariableNotFound):
	default:
		return nil, err
	}

	if input.RotationDays != nil {
		days := *input.RotationDays
		next := now.AddDate(0, 0, days)
		variable.RotationEnabled = true
		variable.RotationPeriodDays = &days
		variable.NextRotation = &next
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if action == auditDomain.ActionCreate {
			if err := u.varRepo.Create(ctx, variable); err != nil {
				return err
			}
		} else {
			if err := u.varRepo.Update(ctx, variable); err != nil {
				return err
			}
		}

		_, err := u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     action,
			EntityType: auditDomain.EntityVariable,
			EntityID:   variableEntityID(env.Name, variable.Key),
			OldValue:   oldValue,
			NewValue:   variable.Value,
			Actor:      input.Actor,
			Details:    map[string]string{"secret": boolString(variable.IsSecret)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return variable, nil
}

// Get retrieves a variable. With reveal, secret values are decrypted under the
// session key; a locked session fails before any read of the ciphertext is
// surfaced, and a wrong key fails with a decryption error.
func (u *SecretStoreUseCase) Get(ctx context.Context, environment, key string, reveal bool) (*domain.Variable, error) {
	env, err := u.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}

	variable, err := u.varRepo.GetByKey(ctx, env.ID, key)
	if err != nil {
		return nil, err
	}

	if reveal && variable.IsSecret {
		sessionKey, err := u.session.Acquire()
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(sessionKey)

		plaintext, err := u.envelope.Decrypt(variable.Value, sessionKey)
		if err != nil {
			return nil, err
		}

		revealed := *variable
		revealed.Value = plaintext
		revealed.Encrypted = false
		return &revealed, nil
	}

	return variable, nil
}

// Delete removes a variable and appends a 'delete' audit entry in the same
// transaction. The entry records the removed value's fingerprint, never the
// value itself.
func (u *SecretStoreUseCase) Delete(ctx context.Context, environment, key string, actor auditDomain.Actor) error {
	env, err := u.envRepo.GetByName(ctx, environment)
	if err != nil {
		return err
	}

	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		variable, err := u.varRepo.GetByKey(ctx, env.ID, key)
		if err != nil {
			return err
		}

		if err := u.varRepo.Delete(ctx, variable.ID); err != nil {
			return err
		}

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionDelete,
			EntityType: auditDomain.EntityVariable,
			EntityID:   variableEntityID(env.Name, variable.Key),
			OldValue:   u.fingerprinter.ValueFingerprint(variable.Value),
			Actor:      actor,
			Details:    map[string]string{"secret": boolString(variable.IsSecret)},
		})
		return err
	})
}

// List retrieves the variables of an environment, optionally filtered by tag
// or key substring. Secret values stay encrypted.
func (u *SecretStoreUseCase) List(
	ctx context.Context,
	environment string,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	env, err := u.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}
	return u.varRepo.ListByEnvironment(ctx, env.ID, filter)
}

// variableEntityID renders the audit entity id for a variable.
func variableEntityID(environment, key string) string {
	return environment + "/" + key
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
