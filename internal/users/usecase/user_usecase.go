// Package usecase implements team member management: named users with a
// role, authenticated by their own password rather than the master password.
package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	"github.com/allisson/envguard/internal/database"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/users/domain"
	appValidation "github.com/allisson/envguard/internal/validation"
)

// minUserPasswordLength is the minimum accepted user password length.
const minUserPasswordLength = 8

// CreateUserInput contains the input data for user creation.
type CreateUserInput struct {
	Name     string
	Password string
	Role     domain.Role
	Actor    auditDomain.Actor
}

// UseCase defines the interface for user business logic operations.
type UseCase interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Authenticate(ctx context.Context, name, password string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, name string, actor auditDomain.Actor) error
}

// UserRepository interface defines user repository operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserUseCase handles user-related business logic.
type UserUseCase struct {
	txManager database.TxManager
	repo      UserRepository
	hasher    cryptoService.PasswordHasher
	auditLog  auditUsecase.AuditLogUseCase
	now       func() time.Time
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager database.TxManager,
	repo UserRepository,
	hasher cryptoService.PasswordHasher,
	auditLog auditUsecase.AuditLogUseCase,
) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		repo:      repo,
		hasher:    hasher,
		auditLog:  auditLog,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateCreateUserInput(input CreateUserInput) error {
	return appValidation.WrapValidationError(validation.Errors{
		"name": validation.Validate(input.Name,
			validation.Required,
			appValidation.Identifier,
			validation.Length(1, 64),
		),
		"password": validation.Validate(input.Password,
			validation.Required,
			appValidation.PasswordStrength{MinLength: minUserPasswordLength},
		),
	}.Filter())
}

// Create adds a team member with a hashed password and appends a 'create'
// audit entry in the same transaction. The password digest is never recorded
// in the audit trail.
func (u *UserUseCase) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := validateCreateUserInput(input); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	digest, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	now := u.now()
	user := &domain.User{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           input.Name,
		PasswordDigest: digest,
		Role:           input.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, user); err != nil {
			return err
		}

		_, err := u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionCreate,
			EntityType: auditDomain.EntityUser,
			EntityID:   user.Name,
			NewValue:   string(user.Role),
			Actor:      input.Actor,
			Details:    map[string]string{"role": string(user.Role)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate checks a user's name and password. An unknown name and a wrong
// password both fail with invalid credentials so the two are indistinguishable
// to the caller.
func (u *UserUseCase) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	user, err := u.repo.GetByName(ctx, name)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !u.hasher.Verify(password, user.PasswordDigest) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// List retrieves all team members.
func (u *UserUseCase) List(ctx context.Context) ([]*domain.User, error) {
	return u.repo.List(ctx)
}

// Delete removes a team member by name and appends a 'delete' audit entry in
// the same transaction.
func (u *UserUseCase) Delete(ctx context.Context, name string, actor auditDomain.Actor) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := u.repo.GetByName(ctx, name)
		if err != nil {
			return err
		}

		if err := u.repo.Delete(ctx, user.ID); err != nil {
			return err
		}

		_, err = u.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionDelete,
			EntityType: auditDomain.EntityUser,
			EntityID:   user.Name,
			OldValue:   string(user.Role),
			Actor:      actor,
		})
		return err
	})
}
