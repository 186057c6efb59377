// Package mocks provides mock implementations for testing use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/envguard/internal/rotation/domain"
)

// MockHistoryRepository is a mock implementation of HistoryRepository for testing.
type MockHistoryRepository struct {
	mock.Mock
}

// Create mocks the Create method of HistoryRepository.
func (m *MockHistoryRepository) Create(ctx context.Context, entry *domain.RotationHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ListByVariable mocks the ListByVariable method of HistoryRepository.
func (m *MockHistoryRepository) ListByVariable(
	ctx context.Context,
	variableID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	args := m.Called(ctx, variableID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RotationHistoryEntry), args.Error(1)
}

// ListByEnvironment mocks the ListByEnvironment method of HistoryRepository.
func (m *MockHistoryRepository) ListByEnvironment(
	ctx context.Context,
	environmentID uuid.UUID,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	args := m.Called(ctx, environmentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RotationHistoryEntry), args.Error(1)
}
