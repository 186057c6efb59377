// Package mocks provides mock implementations for testing use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
)

// MockAuditLogRepository is a mock implementation of AuditLogRepository for testing.
type MockAuditLogRepository struct {
	mock.Mock
}

// Create mocks the Create method of AuditLogRepository.
func (m *MockAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Get mocks the Get method of AuditLogRepository.
func (m *MockAuditLogRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLog), args.Error(1)
}

// List mocks the List method of AuditLogRepository.
func (m *MockAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// CountOlderThan mocks the CountOlderThan method of AuditLogRepository.
func (m *MockAuditLogRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of AuditLogRepository.
func (m *MockAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Count mocks the Count method of AuditLogRepository.
func (m *MockAuditLogRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// CountByAction mocks the CountByAction method of AuditLogRepository.
func (m *MockAuditLogRepository) CountByAction(ctx context.Context) ([]auditDomain.ActionCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditDomain.ActionCount), args.Error(1)
}
