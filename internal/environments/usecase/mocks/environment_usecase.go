package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/environments/domain"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
)

// MockEnvironmentUseCase is a mock implementation of UseCase for testing.
type MockEnvironmentUseCase struct {
	mock.Mock
}

// Create mocks the Create method of UseCase.
func (m *MockEnvironmentUseCase) Create(
	ctx context.Context,
	input environmentsUsecase.CreateEnvironmentInput,
) (*domain.Environment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

// Get mocks the Get method of UseCase.
func (m *MockEnvironmentUseCase) Get(ctx context.Context, name string) (*domain.Environment, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

// List mocks the List method of UseCase.
func (m *MockEnvironmentUseCase) List(ctx context.Context) ([]*domain.Environment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Environment), args.Error(1)
}

// UpdateDescription mocks the UpdateDescription method of UseCase.
func (m *MockEnvironmentUseCase) UpdateDescription(
	ctx context.Context,
	name, description string,
	actor auditDomain.Actor,
) (*domain.Environment, error) {
	args := m.Called(ctx, name, description, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

// Clone mocks the Clone method of UseCase.
func (m *MockEnvironmentUseCase) Clone(
	ctx context.Context,
	input environmentsUsecase.CloneEnvironmentInput,
) (*domain.Environment, int, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.Environment), args.Int(1), args.Error(2)
}

// Delete mocks the Delete method of UseCase.
func (m *MockEnvironmentUseCase) Delete(ctx context.Context, name string, actor auditDomain.Actor) error {
	args := m.Called(ctx, name, actor)
	return args.Error(0)
}
