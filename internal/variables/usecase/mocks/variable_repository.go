// Package mocks provides mock implementations for testing use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/envguard/internal/variables/domain"
)

// MockVariableRepository is a mock implementation of VariableRepository for testing.
type MockVariableRepository struct {
	mock.Mock
}

// Create mocks the Create method of VariableRepository.
func (m *MockVariableRepository) Create(ctx context.Context, variable *domain.Variable) error {
	args := m.Called(ctx, variable)
	return args.Error(0)
}

// Update mocks the Update method of VariableRepository.
func (m *MockVariableRepository) Update(ctx context.Context, variable *domain.Variable) error {
	args := m.Called(ctx, variable)
	return args.Error(0)
}

// GetByID mocks the GetByID method of VariableRepository.
func (m *MockVariableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Variable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variable), args.Error(1)
}

// GetByKey mocks the GetByKey method of VariableRepository.
func (m *MockVariableRepository) GetByKey(
	ctx context.Context,
	environmentID uuid.UUID,
	key string,
) (*domain.Variable, error) {
	args := m.Called(ctx, environmentID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variable), args.Error(1)
}

// ListByEnvironment mocks the ListByEnvironment method of VariableRepository.
func (m *MockVariableRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	args := m.Called(ctx, environmentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Variable), args.Error(1)
}

// ListDue mocks the ListDue method of VariableRepository.
func (m *MockVariableRepository) ListDue(
	ctx context.Context,
	environmentID uuid.UUID,
	now time.Time,
	includeNonExpired bool,
) ([]*domain.Variable, error) {
	args := m.Called(ctx, environmentID, now, includeNonExpired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Variable), args.Error(1)
}

// SetRotationEnabled mocks the SetRotationEnabled method of VariableRepository.
func (m *MockVariableRepository) SetRotationEnabled(
	ctx context.Context,
	environmentID uuid.UUID,
	enabled bool,
	defaultPeriodDays *int,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, environmentID, enabled, defaultPeriodDays, now)
	return args.Get(0).(int64), args.Error(1)
}

// Delete mocks the Delete method of VariableRepository.
func (m *MockVariableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
