// Package mocks provides mock implementations for testing use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/envguard/internal/settings/domain"
)

// MockSettingsRepository is a mock implementation of SettingsRepository for testing.
type MockSettingsRepository struct {
	mock.Mock
}

// Create mocks the Create method of SettingsRepository.
func (m *MockSettingsRepository) Create(ctx context.Context, settings *domain.AppSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// Get mocks the Get method of SettingsRepository.
func (m *MockSettingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

// Update mocks the Update method of SettingsRepository.
func (m *MockSettingsRepository) Update(ctx context.Context, settings *domain.AppSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
