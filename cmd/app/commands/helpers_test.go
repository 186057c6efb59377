package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/config"
	usersDomain "github.com/allisson/envguard/internal/users/domain"
	usersMocks "github.com/allisson/envguard/internal/users/usecase/mocks"
)

func TestResolveMasterPassword(t *testing.T) {
	t.Run("flag-wins", func(t *testing.T) {
		cfg := &config.Config{MasterPassword: "from-env"}
		password, err := ResolveMasterPassword(cfg, "from-flag", strings.NewReader(""), &bytes.Buffer{})

		require.NoError(t, err)
		require.Equal(t, "from-flag", password)
	})

	t.Run("env-fallback", func(t *testing.T) {
		cfg := &config.Config{MasterPassword: "from-env"}
		password, err := ResolveMasterPassword(cfg, "", strings.NewReader(""), &bytes.Buffer{})

		require.NoError(t, err)
		require.Equal(t, "from-env", password)
	})

	t.Run("prompt-fallback", func(t *testing.T) {
		var out bytes.Buffer
		password, err := ResolveMasterPassword(&config.Config{}, "", strings.NewReader("typed-in\n"), &out)

		require.NoError(t, err)
		require.Equal(t, "typed-in", password)
		require.Contains(t, out.String(), "Master password:")
	})

	t.Run("empty-input", func(t *testing.T) {
		_, err := ResolveMasterPassword(&config.Config{}, "", strings.NewReader("\n"), &bytes.Buffer{})

		require.Error(t, err)
		require.Contains(t, err.Error(), "no master password provided")
	})
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()

	t.Run("system-actor-without-user", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		actor, err := ResolveActor(ctx, mockUseCase, "", "")

		require.NoError(t, err)
		require.Equal(t, auditDomain.SystemActor(), actor)
	})

	t.Run("authenticated-user", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "alice", "correct-horse-battery").
			Return(&usersDomain.User{ID: userID, Name: "alice", Role: usersDomain.RoleWrite}, nil)

		actor, err := ResolveActor(ctx, mockUseCase, "alice", "correct-horse-battery")

		require.NoError(t, err)
		require.Equal(t, userID.String(), actor.ID)
		require.Equal(t, "alice", actor.Name)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("authentication-failure", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "alice", "wrong").
			Return(nil, usersDomain.ErrInvalidCredentials)

		_, err := ResolveActor(ctx, mockUseCase, "alice", "wrong")

		require.Error(t, err)
		require.ErrorIs(t, err, usersDomain.ErrInvalidCredentials)
	})
}

func TestResolveWriteActor(t *testing.T) {
	ctx := context.Background()

	t.Run("write-role-allowed", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "alice", "correct-horse-battery").
			Return(&usersDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice", Role: usersDomain.RoleWrite}, nil)

		actor, err := ResolveWriteActor(ctx, mockUseCase, "alice", "correct-horse-battery")

		require.NoError(t, err)
		require.Equal(t, "alice", actor.Name)
	})

	t.Run("read-role-denied", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "bob", "correct-horse-battery").
			Return(&usersDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "bob", Role: usersDomain.RoleRead}, nil)

		_, err := ResolveWriteActor(ctx, mockUseCase, "bob", "correct-horse-battery")

		require.ErrorIs(t, err, usersDomain.ErrPermissionDenied)
	})

	t.Run("system-actor-bypasses-check", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		actor, err := ResolveWriteActor(ctx, mockUseCase, "", "")

		require.NoError(t, err)
		require.Equal(t, auditDomain.SystemActor(), actor)
	})
}

func TestResolveAdminActor(t *testing.T) {
	ctx := context.Background()

	t.Run("admin-role-allowed", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "alice", "correct-horse-battery").
			Return(&usersDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice", Role: usersDomain.RoleAdmin}, nil)

		_, err := ResolveAdminActor(ctx, mockUseCase, "alice", "correct-horse-battery")

		require.NoError(t, err)
	})

	t.Run("write-role-denied", func(t *testing.T) {
		mockUseCase := &usersMocks.MockUserUseCase{}
		mockUseCase.On("Authenticate", ctx, "bob", "correct-horse-battery").
			Return(&usersDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "bob", Role: usersDomain.RoleWrite}, nil)

		_, err := ResolveAdminActor(ctx, mockUseCase, "bob", "correct-horse-battery")

		require.ErrorIs(t, err, usersDomain.ErrPermissionDenied)
	})
}
