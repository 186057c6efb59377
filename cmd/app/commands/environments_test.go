package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	environmentsDomain "github.com/allisson/envguard/internal/environments/domain"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
	environmentsMocks "github.com/allisson/envguard/internal/environments/usecase/mocks"
	settingsMocks "github.com/allisson/envguard/internal/settings/usecase/mocks"
)

func TestRunEnvCreate(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	actor := auditDomain.SystemActor()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Create", ctx, environmentsUsecase.CreateEnvironmentInput{
			Name:        "staging",
			Description: "pre-production",
			Actor:       actor,
		}).Return(&environmentsDomain.Environment{
			ID:          uuid.Must(uuid.NewV7()),
			Name:        "staging",
			Description: "pre-production",
		}, nil)

		var out bytes.Buffer
		err := RunEnvCreate(ctx, mockUseCase, logger, &out, "staging", "pre-production", actor, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), `Created environment "staging"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Create", ctx, environmentsUsecase.CreateEnvironmentInput{
			Name:  "production",
			Actor: actor,
		}).Return(&environmentsDomain.Environment{
			ID:   uuid.Must(uuid.NewV7()),
			Name: "production",
		}, nil)

		var out bytes.Buffer
		err := RunEnvCreate(ctx, mockUseCase, logger, &out, "production", "", actor, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"name": "production"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("create-error", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Create", ctx, environmentsUsecase.CreateEnvironmentInput{
			Name:  "staging",
			Actor: actor,
		}).Return(nil, environmentsDomain.ErrEnvironmentAlreadyExists)

		err := RunEnvCreate(ctx, mockUseCase, logger, &bytes.Buffer{}, "staging", "", actor, "text")

		require.Error(t, err)
		require.ErrorIs(t, err, environmentsDomain.ErrEnvironmentAlreadyExists)
	})
}

func TestRunEnvList(t *testing.T) {
	ctx := context.Background()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("List", ctx).Return([]*environmentsDomain.Environment{
			{ID: uuid.Must(uuid.NewV7()), Name: "development", Description: "local work"},
			{ID: uuid.Must(uuid.NewV7()), Name: "production"},
		}, nil)

		var out bytes.Buffer
		err := RunEnvList(ctx, mockUseCase, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "development\tlocal work")
		require.Contains(t, out.String(), "production")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("List", ctx).Return([]*environmentsDomain.Environment{}, nil)

		var out bytes.Buffer
		err := RunEnvList(ctx, mockUseCase, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "No environments found")
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("List", ctx).Return([]*environmentsDomain.Environment{
			{ID: uuid.Must(uuid.NewV7()), Name: "development"},
		}, nil)

		var out bytes.Buffer
		err := RunEnvList(ctx, mockUseCase, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"name": "development"`)
	})
}

func TestRunEnvClone(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	actor := auditDomain.SystemActor()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Clone", ctx, environmentsUsecase.CloneEnvironmentInput{
			Source: "production",
			Target: "staging",
			Actor:  actor,
		}).Return(&environmentsDomain.Environment{
			ID:   uuid.Must(uuid.NewV7()),
			Name: "staging",
		}, 3, nil)

		var out bytes.Buffer
		err := RunEnvClone(ctx, mockUseCase, logger, &out, "production", "staging", "", actor, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), `Cloned environment "production" into "staging" (3 variable(s))`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Clone", ctx, environmentsUsecase.CloneEnvironmentInput{
			Source:      "production",
			Target:      "qa",
			Description: "testing copy",
			Actor:       actor,
		}).Return(&environmentsDomain.Environment{
			ID:   uuid.Must(uuid.NewV7()),
			Name: "qa",
		}, 2, nil)

		var out bytes.Buffer
		err := RunEnvClone(ctx, mockUseCase, logger, &out, "production", "qa", "testing copy", actor, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"source": "production"`)
		require.Contains(t, out.String(), `"variables": 2`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("source-not-found", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Clone", ctx, environmentsUsecase.CloneEnvironmentInput{
			Source: "missing",
			Target: "staging",
			Actor:  actor,
		}).Return(nil, 0, environmentsDomain.ErrEnvironmentNotFound)

		var out bytes.Buffer
		err := RunEnvClone(ctx, mockUseCase, logger, &out, "missing", "staging", "", actor, "text")

		require.ErrorIs(t, err, environmentsDomain.ErrEnvironmentNotFound)
	})
}

func TestRunEnvUse(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	actor := auditDomain.SystemActor()

	t.Run("text-output", func(t *testing.T) {
		mockSettings := &settingsMocks.MockSettingsUseCase{}
		mockSettings.On("SetDefaultEnvironment", ctx, "staging", actor).Return(nil)

		var out bytes.Buffer
		err := RunEnvUse(ctx, mockSettings, logger, &out, "staging", actor, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), `Default environment set to "staging"`)
		mockSettings.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockSettings := &settingsMocks.MockSettingsUseCase{}
		mockSettings.On("SetDefaultEnvironment", ctx, "production", actor).Return(nil)

		var out bytes.Buffer
		err := RunEnvUse(ctx, mockSettings, logger, &out, "production", actor, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"default_environment": "production"`)
		mockSettings.AssertExpectations(t)
	})

	t.Run("environment-not-found", func(t *testing.T) {
		mockSettings := &settingsMocks.MockSettingsUseCase{}
		mockSettings.On("SetDefaultEnvironment", ctx, "missing", actor).
			Return(environmentsDomain.ErrEnvironmentNotFound)

		var out bytes.Buffer
		err := RunEnvUse(ctx, mockSettings, logger, &out, "missing", actor, "text")

		require.ErrorIs(t, err, environmentsDomain.ErrEnvironmentNotFound)
	})
}

func TestRunEnvDelete(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	actor := auditDomain.SystemActor()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Delete", ctx, "staging", actor).Return(nil)

		var out bytes.Buffer
		err := RunEnvDelete(ctx, mockUseCase, logger, &out, "staging", actor, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), `Deleted environment "staging"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &environmentsMocks.MockEnvironmentUseCase{}
		mockUseCase.On("Delete", ctx, "missing", actor).Return(environmentsDomain.ErrEnvironmentNotFound)

		err := RunEnvDelete(ctx, mockUseCase, logger, &bytes.Buffer{}, "missing", actor, "text")

		require.Error(t, err)
		require.ErrorIs(t, err, environmentsDomain.ErrEnvironmentNotFound)
	})
}
