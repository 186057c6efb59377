package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/variables/domain"
	variablesUsecase "github.com/allisson/envguard/internal/variables/usecase"
)

// MockSecretStore is a mock implementation of SecretStore for testing.
type MockSecretStore struct {
	mock.Mock
}

// Set mocks the Set method of SecretStore.
func (m *MockSecretStore) Set(
	ctx context.Context,
	input variablesUsecase.SetVariableInput,
) (*domain.Variable, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variable), args.Error(1)
}

// Get mocks the Get method of SecretStore.
func (m *MockSecretStore) Get(
	ctx context.Context,
	environment, key string,
	reveal bool,
) (*domain.Variable, error) {
	args := m.Called(ctx, environment, key, reveal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variable), args.Error(1)
}

// Delete mocks the Delete method of SecretStore.
func (m *MockSecretStore) Delete(ctx context.Context, environment, key string, actor auditDomain.Actor) error {
	args := m.Called(ctx, environment, key, actor)
	return args.Error(0)
}

// List mocks the List method of SecretStore.
func (m *MockSecretStore) List(
	ctx context.Context,
	environment string,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	args := m.Called(ctx, environment, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Variable), args.Error(1)
}
