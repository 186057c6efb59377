// Package usecase implements the environment lifecycle and orchestrates the
// audit entries written for every mutation.
package usecase

import (
	"context"
	"strconv"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	"github.com/allisson/envguard/internal/database"
	"github.com/allisson/envguard/internal/environments/domain"
	appValidation "github.com/allisson/envguard/internal/validation"
	varDomain "github.com/allisson/envguard/internal/variables/domain"
)

// CreateEnvironmentInput contains the input data for environment creation.
type CreateEnvironmentInput struct {
	Name        string
	Description string
	Actor       auditDomain.Actor
}

// CloneEnvironmentInput contains the input data for environment cloning.
type CloneEnvironmentInput struct {
	Source      string
	Target      string
	Description string
	Actor       auditDomain.Actor
}

// UseCase defines the interface for environment business logic operations.
type UseCase interface {
	Create(ctx context.Context, input CreateEnvironmentInput) (*domain.Environment, error)
	Get(ctx context.Context, name string) (*domain.Environment, error)
	List(ctx context.Context) ([]*domain.Environment, error)
	UpdateDescription(ctx context.Context, name, description string, actor auditDomain.Actor) (*domain.Environment, error)
	Clone(ctx context.Context, input CloneEnvironmentInput) (*domain.Environment, int, error)
	Delete(ctx context.Context, name string, actor auditDomain.Actor) error
}

// EnvironmentRepository interface defines environment repository operations.
type EnvironmentRepository interface {
	Create(ctx context.Context, env *domain.Environment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error)
	GetByName(ctx context.Context, name string) (*domain.Environment, error)
	List(ctx context.Context) ([]*domain.Environment, error)
	Update(ctx context.Context, env *domain.Environment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VariableCopier lists and inserts variable rows for environment cloning.
type VariableCopier interface {
	ListByEnvironment(ctx context.Context, environmentID uuid.UUID, filter varDomain.ListFilter) ([]*varDomain.Variable, error)
	Create(ctx context.Context, variable *varDomain.Variable) error
}

// EnvironmentUseCase handles environment-related business logic.
type EnvironmentUseCase struct {
	txManager database.TxManager
	repo      EnvironmentRepository
	varRepo   VariableCopier
	auditLog  auditUsecase.AuditLogUseCase
	now       func() time.Time
}

// NewEnvironmentUseCase creates a new EnvironmentUseCase.
func NewEnvironmentUseCase(
	txManager database.TxManager,
	repo EnvironmentRepository,
	varRepo VariableCopier,
	auditLog auditUsecase.AuditLogUseCase,
) *EnvironmentUseCase {
	return &EnvironmentUseCase{
		txManager: txManager,
		repo:      repo,
		varRepo:   varRepo,
		auditLog:  auditLog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateCreateEnvironmentInput(input CreateEnvironmentInput) error {
	return appValidation.WrapValidationError(validation.Errors{
		"name": validation.Validate(input.Name,
			validation.Required,
			appValidation.Identifier,
			validation.Length(1, 64),
		),
		"description": validation.Validate(input.Description, validation.Length(0, 500)),
	}.Filter())
}

// Create inserts a new environment with a unique name and appends a 'create'
// audit entry in the same transaction.
func (u *EnvironmentUseCase) Create(ctx context.Context, input CreateEnvironmentInput) (*domain.Environment, error) {
	if err := validateCreateEnvironmentInput(input); err != nil {
		return nil, err
	}

	now := u.now()
	env := &domain.Environment{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, env); err != nil {
			return err
		}

		_, err := u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionCreate,
			EntityType: auditDomain.EntityEnvironment,
			EntityID:   env.Name,
			NewValue:   env.Description,
			Actor:      input.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return env, nil
}

// Get retrieves an environment by name.
func (u *EnvironmentUseCase) Get(ctx context.Context, name string) (*domain.Environment, error) {
	return u.repo.GetByName(ctx, name)
}

// List retrieves all environments.
func (u *EnvironmentUseCase) List(ctx context.Context) ([]*domain.Environment, error) {
	return u.repo.List(ctx)
}

// UpdateDescription changes an environment's description and appends an
// 'update' audit entry in the same transaction.
func (u *EnvironmentUseCase) UpdateDescription(
	ctx context.Context,
	name, description string,
	actor auditDomain.Actor,
) (*domain.Environment, error) {
	if err := appValidation.WrapValidationError(
		validation.Validate(description, validation.Length(0, 500)),
	); err != nil {
		return nil, err
	}

	var env *domain.Environment
	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		env, err = u.repo.GetByName(ctx, name)
		if err != nil {
			return err
		}

		oldDescription := env.Description
		env.Description = description
		env.UpdatedAt = u.now()

		if err := u.repo.Update(ctx, env); err != nil {
			return err
		}

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionUpdate,
			EntityType: auditDomain.EntityEnvironment,
			EntityID:   env.Name,
			OldValue:   oldDescription,
			NewValue:   description,
			Actor:      actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return env, nil
}

// Clone creates a new environment and copies every variable of the source
// into it. Secret values are copied as stored ciphertext, so cloning never
// needs the master key. The target environment, its variable rows, and a
// single 'clone' audit entry commit in one transaction.
func (u *EnvironmentUseCase) Clone(
	ctx context.Context,
	input CloneEnvironmentInput,
) (*domain.Environment, int, error) {
	if err := validateCreateEnvironmentInput(CreateEnvironmentInput{
		Name:        input.Target,
		Description: input.Description,
	}); err != nil {
		return nil, 0, err
	}

	now := u.now()
	target := &domain.Environment{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Target,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var copied int
	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		source, err := u.repo.GetByName(ctx, input.Source)
		if err != nil {
			return err
		}

		if err := u.repo.Create(ctx, target); err != nil {
			return err
		}

		variables, err := u.varRepo.ListByEnvironment(ctx, source.ID, varDomain.ListFilter{})
		if err != nil {
			return err
		}

		for _, variable := range variables {
			clone := *variable
			clone.ID = uuid.Must(uuid.NewV7())
			clone.EnvironmentID = target.ID
			clone.CreatedAt = now
			clone.UpdatedAt = now
			if err := u.varRepo.Create(ctx, &clone); err != nil {
				return err
			}
		}
		copied = len(variables)

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionClone,
			EntityType: auditDomain.EntityEnvironment,
			EntityID:   target.Name,
			Actor:      input.Actor,
			Details: map[string]string{
				"source":    source.Name,
				"variables": strconv.Itoa(copied),
			},
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return target, copied, nil
}

// Delete removes an environment and all its variables (schema cascade) and
// appends a 'delete' audit entry in the same transaction.
func (u *EnvironmentUseCase) Delete(ctx context.Context, name string, actor auditDomain.Actor) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		env, err := u.repo.GetByName(ctx, name)
		if err != nil {
			return err
		}

		if err := u.repo.Delete(ctx, env.ID); err != nil {
			return err
		}

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionDelete,
			EntityType: auditDomain.EntityEnvironment,
			EntityID:   env.Name,
			OldValue:   env.Description,
			Actor:      actor,
			Details:    map[string]string{"cascade": "variables"},
		})
		return err
	})
}
