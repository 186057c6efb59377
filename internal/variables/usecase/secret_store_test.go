package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditService "github.com/allisson/envguard/internal/audit/service"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	auditMocks "github.com/allisson/envguard/internal/audit/usecase/mocks"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	envMocks "github.com/allisson/envguard/internal/environments/usecase/mocks"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/testutil"
	"github.com/allisson/envguard/internal/variables/domain"
	"github.com/allisson/envguard/internal/variables/usecase/mocks"

	. "github.com/allisson/envguard/internal/variables/usecase"
)

var testActor = auditDomain.Actor{ID: "u1", Name: "alice", IPAddress: "127.0.0.1"}

type secretStoreFixture struct {
	uc        *SecretStoreUseCase
	varRepo   *mocks.MockVariableRepository
	envRepo   *envMocks.MockEnvironmentRepository
	auditLog  *auditMocks.MockAuditLogUseCase
	session   *cryptoDomain.MasterKeySession
	txManager *testutil.PassthroughTxManager
	env       *envDomain.Environment
}

func newSecretStoreFixture(t *testing.T) *secretStoreFixture {
	t.Helper()

	f := &secretStoreFixture{
		varRepo:   new(mocks.MockVariableRepository),
		envRepo:   new(envMocks.MockEnvironmentRepository),
		auditLog:  new(auditMocks.MockAuditLogUseCase),
		session:   cryptoDomain.NewMasterKeySession(),
		txManager: &testutil.PassthroughTxManager{},
		env: &envDomain.Environment{
			ID:   uuid.Must(uuid.NewV7()),
			Name: "production",
		},
	}
	f.uc = NewSecretStoreUseCase(
		f.txManager,
		f.varRepo,
		f.envRepo,
		f.session,
		cryptoService.NewEnvelope(),
		auditService.NewFingerprinter(),
		f.auditLog,
	)
	return f
}

func (f *secretStoreFixture) unlock(t *testing.T) []byte {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, cryptoDomain.KeySize)
	require.NoError(t, f.session.Set(key))
	return key
}

func TestSecretStoreUseCase_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("creates plain variable with the session locked", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "LOG_LEVEL").Return(nil, domain.ErrVariableNotFound)
		f.varRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Variable")).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionCreate &&
				input.EntityID == "production/LOG_LEVEL" &&
				input.NewValue == "debug"
		})).Return(&auditDomain.AuditLog{}, nil)

		variable, err := f.uc.Set(ctx, SetVariableInput{
			Environment: "production",
			Key:         "LOG_LEVEL",
			Value:       "debug",
			Actor:       testActor,
		})
		require.NoError(t, err)
		assert.Equal(t, "debug", variable.Value)
		assert.False(t, variable.IsSecret)
		assert.False(t, variable.Encrypted)
		assert.False(t, variable.RotationEnabled)
		assert.Equal(t, 1, f.txManager.CalledTimes)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("creates secret variable with ciphertext at rest", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		key := f.unlock(t)

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(nil, domain.ErrVariableNotFound)
		f.varRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Variable")).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			// Audit images carry ciphertext, not the plaintext value.
			return input.Action == auditDomain.ActionCreate && input.NewValue != "abc123"
		})).Return(&auditDomain.AuditLog{}, nil)

		days := 30
		variable, err := f.uc.Set(ctx, SetVariableInput{
			Environment:  "production",
			Key:          "API_KEY",
			Value:        "abc123",
			IsSecret:     true,
			RotationDays: &days,
			Actor:        testActor,
		})
		require.NoError(t, err)

		assert.True(t, variable.Encrypted)
		assert.NotEqual(t, "abc123", variable.Value)
		assert.NotContains(t, variable.Value, "abc123")

		plaintext, err := cryptoService.NewEnvelope().Decrypt(variable.Value, key)
		require.NoError(t, err)
		assert.Equal(t, "abc123", plaintext)

		require.NotNil(t, variable.RotationPeriodDays)
		assert.Equal(t, 30, *variable.RotationPeriodDays)
		assert.True(t, variable.RotationEnabled)
		require.NotNil(t, variable.NextRotation)
	})

	t.Run("updates existing variable in place", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		existing := &domain.Variable{
			ID:            uuid.Must(uuid.NewV7()),
			EnvironmentID: f.env.ID,
			Key:           "LOG_LEVEL",
			Value:         "info",
			CreatedAt:     time.Now().UTC().Add(-time.Hour),
		}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "LOG_LEVEL").Return(existing, nil)
		f.varRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Variable")).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionUpdate &&
				input.OldValue == "info" && input.NewValue == "debug"
		})).Return(&auditDomain.AuditLog{}, nil)

		variable, err := f.uc.Set(ctx, SetVariableInput{
			Environment: "production",
			Key:         "LOG_LEVEL",
			Value:       "debug",
			Actor:       testActor,
		})
		require.NoError(t, err)

		assert.Equal(t, existing.ID, variable.ID)
		assert.Equal(t, existing.CreatedAt, variable.CreatedAt)
		f.varRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("secret without session key fails before any write", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)

		_, err := f.uc.Set(ctx, SetVariableInput{
			Environment: "production",
			Key:         "API_KEY",
			Value:       "abc123",
			IsSecret:    true,
			Actor:       testActor,
		})
		require.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
		f.varRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.varRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Equal(t, 0, f.txManager.CalledTimes)
	})

	t.Run("rejects rotation on plain variables", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		days := 30
		_, err := f.uc.Set(ctx, SetVariableInput{
			Environment:  "production",
			Key:          "LOG_LEVEL",
			Value:        "debug",
			RotationDays: &days,
			Actor:        testActor,
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("rejects non-positive rotation period", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		days := 0
		_, err := f.uc.Set(ctx, SetVariableInput{
			Environment:  "production",
			Key:          "API_KEY",
			Value:        "abc123",
			IsSecret:     true,
			RotationDays: &days,
			Actor:        testActor,
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown environment fails with not found", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		f.envRepo.On("GetByName", mock.Anything, "missing").Return(nil, envDomain.ErrEnvironmentNotFound)

		_, err := f.uc.Set(ctx, SetVariableInput{
			Environment: "missing",
			Key:         "LOG_LEVEL",
			Value:       "debug",
			Actor:       testActor,
		})
		require.ErrorIs(t, err, envDomain.ErrEnvironmentNotFound)
	})
}

func TestSecretStoreUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("reveal decrypts under the session key", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		key := f.unlock(t)

		blob, err := cryptoService.NewEnvelope().Encrypt("abc123", key)
		require.NoError(t, err)

		stored := &domain.Variable{
			ID:            uuid.Must(uuid.NewV7()),
			EnvironmentID: f.env.ID,
			Key:           "API_KEY",
			Value:         blob,
			IsSecret:      true,
			Encrypted:     true,
		}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(stored, nil)

		variable, err := f.uc.Get(ctx, "production", "API_KEY", true)
		require.NoError(t, err)
		assert.Equal(t, "abc123", variable.Value)
		assert.False(t, variable.Encrypted)

		// The stored variable keeps its ciphertext.
		assert.Equal(t, blob, stored.Value)
	})

	t.Run("without reveal returns ciphertext", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		stored := &domain.Variable{Key: "API_KEY", Value: "aa:bb", IsSecret: true, Encrypted: true}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(stored, nil)

		variable, err := f.uc.Get(ctx, "production", "API_KEY", false)
		require.NoError(t, err)
		assert.Equal(t, "aa:bb", variable.Value)
		assert.True(t, variable.Encrypted)
	})

	t.Run("reveal without session key fails", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		stored := &domain.Variable{Key: "API_KEY", Value: "aa:bb", IsSecret: true, Encrypted: true}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(stored, nil)

		_, err := f.uc.Get(ctx, "production", "API_KEY", true)
		require.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
	})

	t.Run("reveal under the wrong key fails with decryption error", func(t *testing.T) {
		f := newSecretStoreFixture(t)

		otherKey := bytes.Repeat([]byte{0x01}, cryptoDomain.KeySize)
		blob, err := cryptoService.NewEnvelope().Encrypt("abc123", otherKey)
		require.NoError(t, err)
		f.unlock(t)

		stored := &domain.Variable{Key: "API_KEY", Value: blob, IsSecret: true, Encrypted: true}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(stored, nil)

		_, err = f.uc.Get(ctx, "production", "API_KEY", true)
		require.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestSecretStoreUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("records the removed value's fingerprint", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		fingerprinter := auditService.NewFingerprinter()

		stored := &domain.Variable{
			ID:       uuid.Must(uuid.NewV7()),
			Key:      "API_KEY",
			Value:    "aa:bb",
			IsSecret: true,
		}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(stored, nil)
		f.varRepo.On("Delete", mock.Anything, stored.ID).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionDelete &&
				input.OldValue == fingerprinter.ValueFingerprint("aa:bb")
		})).Return(&auditDomain.AuditLog{}, nil)

		require.NoError(t, f.uc.Delete(ctx, "production", "API_KEY", testActor))
		f.auditLog.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		f := newSecretStoreFixture(t)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "MISSING").Return(nil, domain.ErrVariableNotFound)

		err := f.uc.Delete(ctx, "production", "MISSING", testActor)
		require.ErrorIs(t, err, domain.ErrVariableNotFound)
		f.varRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestSecretStoreUseCase_List(t *testing.T) {
	ctx := context.Background()

	f := newSecretStoreFixture(t)
	expected := []*domain.Variable{{Key: "API_KEY"}}
	filter := domain.ListFilter{Tag: "backend", KeySearch: "API"}

	f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
	f.varRepo.On("ListByEnvironment", mock.Anything, f.env.ID, filter).Return(expected, nil)

	variables, err := f.uc.List(ctx, "production", filter)
	require.NoError(t, err)
	assert.Equal(t, expected, variables)
}
