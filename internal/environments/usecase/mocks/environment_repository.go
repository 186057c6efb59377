// Package mocks provides mock implementations for testing use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/envguard/internal/environments/domain"
)

// MockEnvironmentRepository is a mock implementation of EnvironmentRepository for testing.
type MockEnvironmentRepository struct {
	mock.Mock
}

// Create mocks the Create method of EnvironmentRepository.
func (m *MockEnvironmentRepository) Create(ctx context.Context, env *domain.Environment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

// GetByID mocks the GetByID method of EnvironmentRepository.
func (m *MockEnvironmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

// GetByName mocks the GetByName method of EnvironmentRepository.
func (m *MockEnvironmentRepository) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Environment), args.Error(1)
}

// List mocks the List method of EnvironmentRepository.
func (m *MockEnvironmentRepository) List(ctx context.Context) ([]*domain.Environment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Environment), args.Error(1)
}

// Update mocks the Update method of EnvironmentRepository.
func (m *MockEnvironmentRepository) Update(ctx context.Context, env *domain.Environment) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

// Delete mocks the Delete method of EnvironmentRepository.
func (m *MockEnvironmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
