package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/users/domain"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
)

// MockUserUseCase is a mock implementation of UseCase for testing.
type MockUserUseCase struct {
	mock.Mock
}

// Create mocks the Create method of UseCase.
func (m *MockUserUseCase) Create(
	ctx context.Context,
	input usersUsecase.CreateUserInput,
) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Authenticate mocks the Authenticate method of UseCase.
func (m *MockUserUseCase) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	args := m.Called(ctx, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// List mocks the List method of UseCase.
func (m *MockUserUseCase) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// Delete mocks the Delete method of UseCase.
func (m *MockUserUseCase) Delete(ctx context.Context, name string, actor auditDomain.Actor) error {
	args := m.Called(ctx, name, actor)
	return args.Error(0)
}
