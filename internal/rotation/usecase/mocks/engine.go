package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/rotation/domain"
	varDomain "github.com/allisson/envguard/internal/variables/domain"
)

// MockEngine is a mock implementation of Engine for testing.
type MockEngine struct {
	mock.Mock
}

// DueSecrets mocks the DueSecrets method of Engine.
func (m *MockEngine) DueSecrets(ctx context.Context, environment string, includeNonExpired bool) ([]*varDomain.Variable, error) {
	args := m.Called(ctx, environment, includeNonExpired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*varDomain.Variable), args.Error(1)
}

// Rotate mocks the Rotate method of Engine.
func (m *MockEngine) Rotate(ctx context.Context, environment, key, reason string, actor auditDomain.Actor) (*varDomain.Variable, error) {
	args := m.Called(ctx, environment, key, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*varDomain.Variable), args.Error(1)
}

// RotateBatch mocks the RotateBatch method of Engine.
func (m *MockEngine) RotateBatch(ctx context.Context, environment, reason string, actor auditDomain.Actor) (*domain.BatchResult, error) {
	args := m.Called(ctx, environment, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

// Schedule mocks the Schedule method of Engine.
func (m *MockEngine) Schedule(ctx context.Context, environment string, enable bool, defaultPeriodDays *int, actor auditDomain.Actor) (int64, error) {
	args := m.Called(ctx, environment, enable, defaultPeriodDays, actor)
	return args.Get(0).(int64), args.Error(1)
}

// History mocks the History method of Engine.
func (m *MockEngine) History(ctx context.Context, environment, key string, limit int) ([]*domain.RotationHistoryEntry, error) {
	args := m.Called(ctx, environment, key, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RotationHistoryEntry), args.Error(1)
}
