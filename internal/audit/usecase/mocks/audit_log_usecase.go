package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
)

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Append mocks the Append method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Append(
	ctx context.Context,
	input auditUsecase.AppendInput,
) (*auditDomain.AuditLog, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLog), args.Error(1)
}

// Query mocks the Query method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Query(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// Verify mocks the Verify method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Verify(
	ctx context.Context,
	id uuid.UUID,
) (*auditDomain.VerificationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationResult), args.Error(1)
}

// Purge mocks the Purge method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Purge(ctx context.Context, retentionDays int, dryRun bool) (int64, error) {
	args := m.Called(ctx, retentionDays, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// Stats mocks the Stats method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Stats(ctx context.Context) (*auditDomain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.Stats), args.Error(1)
}
