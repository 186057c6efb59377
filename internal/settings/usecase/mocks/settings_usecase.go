package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/settings/domain"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
)

// MockSettingsUseCase is a mock implementation of UseCase for testing.
type MockSettingsUseCase struct {
	mock.Mock
}

// Initialize mocks the Initialize method of UseCase.
func (m *MockSettingsUseCase) Initialize(
	ctx context.Context,
	input settingsUsecase.InitializeInput,
) (*domain.AppSettings, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

// Get mocks the Get method of UseCase.
func (m *MockSettingsUseCase) Get(ctx context.Context) (*domain.AppSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

// VerifyMasterPassword mocks the VerifyMasterPassword method of UseCase.
func (m *MockSettingsUseCase) VerifyMasterPassword(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

// Unlock mocks the Unlock method of UseCase.
func (m *MockSettingsUseCase) Unlock(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

// Lock mocks the Lock method of UseCase.
func (m *MockSettingsUseCase) Lock() {
	m.Called()
}

// SetDefaultEnvironment mocks the SetDefaultEnvironment method of UseCase.
func (m *MockSettingsUseCase) SetDefaultEnvironment(
	ctx context.Context,
	name string,
	actor auditDomain.Actor,
) error {
	args := m.Called(ctx, name, actor)
	return args.Error(0)
}
