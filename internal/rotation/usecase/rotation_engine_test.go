package usecase

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
	"github.com/allisson/envguard/internal/rotation/domain"
	"github.com/allisson/envguard/internal/rotation/usecase/mocks"
	settingsDomain "github.com/allisson/envguard/internal/settings/domain"
	settingsMocks "github.com/allisson/envguard/internal/settings/usecase/mocks"
	"github.com/allisson/envguard/internal/testutil"
	varDomain "github.com/allisson/envguard/internal/variables/domain"
	varMocks "github.com/allisson/envguard/internal/variables/usecase/mocks"
)

var testActor = auditDomain.Actor{ID: "u1", Name: "alice", IPAddress: "127.0.0.1"}

type rotationFixture struct {
	engine       *RotationEngine
	varRepo      *varMocks.MockVariableRepository
	historyRepo  *mocks.MockHistoryRepository
	envRepo      *envMocks.MockEnvironmentRepository
	settingsRepo *settingsMocks.MockSettingsRepository
	auditLog     *auditMocks.MockAuditLogUseCase
	session      *cryptoDomain.MasterKeySession
	key          []byte
	env          *envDomain.Environment
}

func newRotationFixture(t *testing.T) *rotationFixture {
	t.Helper()

	f := &rotationFixture{
		varRepo:      new(varMocks.MockVariableRepository),
		historyRepo:  new(mocks.MockHistoryRepository),
		envRepo:      new(envMocks.MockEnvironmentRepository),
		settingsRepo: new(settingsMocks.MockSettingsRepository),
		auditLog:     new(auditMocks.MockAuditLogUseCase),
		session:      cryptoDomain.NewMasterKeySession(),
		key:          bytes.Repeat([]byte{0x42}, cryptoDomain.KeySize),
		env: &envDomain.Environment{
			ID:   uuid.Must(uuid.NewV7()),
			Name: "production",
		},
	}
	f.engine = NewRotationEngine(
		&testutil.PassthroughTxManager{},
		f.varRepo,
		f.historyRepo,
		f.envRepo,
		f.settingsRepo,
		f.session,
		cryptoService.NewEnvelope(),
		cryptoService.NewSecretGenerator(cryptoService.DefaultSecretLength),
		auditService.NewFingerprinter(),
		f.auditLog,
		1000,
	)
	return f
}

func (f *rotationFixture) unlock(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Set(f.key))
}

func (f *rotationFixture) secretVariable(key string, periodDays *int) *varDomain.Variable {
	return &varDomain.Variable{
		ID:                 uuid.Must(uuid.NewV7()),
		EnvironmentID:      f.env.ID,
		Key:                key,
		Value:              "aa11:b2xkLWNpcGhlcnRleHQ=",
		IsSecret:           true,
		Encrypted:          true,
		RotationEnabled:    true,
		RotationPeriodDays: periodDays,
	}
}

func TestRotationEngine_DueSecrets(t *testing.T) {
	ctx := context.Background()
	f := newRotationFixture(t)

	due := []*varDomain.Variable{f.secretVariable("API_KEY", nil)}
	f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
	f.varRepo.On("ListDue", mock.Anything, f.env.ID, mock.AnythingOfType("time.Time"), true).Return(due, nil)

	variables, err := f.engine.DueSecrets(ctx, "production", true)
	require.NoError(t, err)
	assert.Equal(t, due, variables)
}

func TestRotationEngine_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates a secret and advances the schedule", func(t *testing.T) {
		f := newRotationFixture(t)
		f.unlock(t)
		fingerprinter := auditService.NewFingerprinter()

		days := 7
		variable := f.secretVariable("API_KEY", &days)
		oldValue := variable.Value

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(variable, nil)
		f.varRepo.On("Update", mock.Anything, variable).Return(nil)

		var history *domain.RotationHistoryEntry
		f.historyRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RotationHistoryEntry")).
			Run(func(args mock.Arguments) {
				history = args.Get(1).(*domain.RotationHistoryEntry)
			}).
			Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionRotate &&
				input.EntityID == "production/API_KEY" &&
				input.OldValue == oldValue
		})).Return(&auditDomain.AuditLog{}, nil)

		before := time.Now().UTC()
		rotated, err := f.engine.Rotate(ctx, "production", "API_KEY", "scheduled", testActor)
		require.NoError(t, err)

		assert.NotEqual(t, oldValue, rotated.Value)
		require.NotNil(t, rotated.LastRotated)
		require.NotNil(t, rotated.NextRotation)
		assert.Equal(t, rotated.LastRotated.AddDate(0, 0, 7), *rotated.NextRotation)
		assert.False(t, rotated.LastRotated.Before(before.Truncate(time.Second)))

		// The replacement decrypts under the session key to a fresh value.
		plaintext, err := cryptoService.NewEnvelope().Decrypt(rotated.Value, f.key)
		require.NoError(t, err)
		assert.Len(t, plaintext, 64)

		require.NotNil(t, history)
		assert.Equal(t, variable.ID, history.VariableID)
		assert.Equal(t, fingerprinter.ValueFingerprint(oldValue), history.OldValueFingerprint)
		assert.Equal(t, fingerprinter.ValueFingerprint(rotated.Value), history.NewValueFingerprint)
		assert.Equal(t, "scheduled", history.Reason)
		assert.Equal(t, "alice", history.RotatedBy)
	})

	t.Run("without a period rotation stays on demand", func(t *testing.T) {
		f := newRotationFixture(t)
		f.unlock(t)

		variable := f.secretVariable("API_KEY", nil)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(variable, nil)
		f.varRepo.On("Update", mock.Anything, variable).Return(nil)
		f.historyRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(&auditDomain.AuditLog{}, nil)

		rotated, err := f.engine.Rotate(ctx, "production", "API_KEY", "manual", testActor)
		require.NoError(t, err)
		assert.Nil(t, rotated.NextRotation)
	})

	t.Run("locked session aborts before any write", func(t *testing.T) {
		f := newRotationFixture(t)

		variable := f.secretVariable("API_KEY", nil)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(variable, nil)

		_, err := f.engine.Rotate(ctx, "production", "API_KEY", "manual", testActor)
		require.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
		f.varRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.historyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("plain variables cannot be rotated", func(t *testing.T) {
		f := newRotationFixture(t)
		f.unlock(t)

		variable := &varDomain.Variable{ID: uuid.Must(uuid.NewV7()), Key: "LOG_LEVEL", Value: "debug"}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "LOG_LEVEL").Return(variable, nil)

		_, err := f.engine.Rotate(ctx, "production", "LOG_LEVEL", "manual", testActor)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRotationEngine_RotateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("collects per-variable failures and keeps going", func(t *testing.T) {
		f := newRotationFixture(t)
		f.unlock(t)

		days := 7
		good := f.secretVariable("GOOD_KEY", &days)
		// A plain variable in the due set fails its own rotation without
		// stopping the batch.
		bad := &varDomain.Variable{ID: uuid.Must(uuid.NewV7()), Key: "BAD_KEY", RotationEnabled: true}

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("ListDue", mock.Anything, f.env.ID, mock.AnythingOfType("time.Time"), false).
			Return([]*varDomain.Variable{bad, good}, nil)
		f.varRepo.On("Update", mock.Anything, good).Return(nil)
		f.historyRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(&auditDomain.AuditLog{}, nil)

		result, err := f.engine.RotateBatch(ctx, "production", "scheduled", testActor)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Rotated)
		require.Equal(t, 1, result.Failed())
		assert.Equal(t, "BAD_KEY", result.Failures[0].Key)
		assert.ErrorIs(t, result.Failures[0].Err, apperrors.ErrInvalidInput)
	})

	t.Run("stops between items on cancellation", func(t *testing.T) {
		f := newRotationFixture(t)
		f.unlock(t)

		cancelledCtx, cancel := context.WithCancel(context.Background())

		days := 7
		first := f.secretVariable("FIRST", &days)
		second := f.secretVariable("SECOND", &days)

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("ListDue", mock.Anything, f.env.ID, mock.AnythingOfType("time.Time"), false).
			Return([]*varDomain.Variable{first, second}, nil)
		f.varRepo.On("Update", mock.Anything, first).Run(func(mock.Arguments) { cancel() }).Return(nil)
		f.historyRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(&auditDomain.AuditLog{}, nil)

		result, err := f.engine.RotateBatch(cancelledCtx, "production", "scheduled", testActor)
		require.ErrorIs(t, err, context.Canceled)

		// The first variable completed atomically; the second never started.
		assert.Equal(t, 1, result.Rotated)
		f.varRepo.AssertNotCalled(t, "Update", mock.Anything, second)
	})

	t.Run("empty due set reports nothing to rotate", func(t *testing.T) {
		f := newRotationFixture(t)

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("ListDue", mock.Anything, f.env.ID, mock.AnythingOfType("time.Time"), false).
			Return([]*varDomain.Variable{}, nil)

		_, err := f.engine.RotateBatch(ctx, "production", "scheduled", testActor)
		require.ErrorIs(t, err, domain.ErrNothingToRotate)
		f.varRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRotationEngine_Schedule(t *testing.T) {
	ctx := context.Background()

	t.Run("bulk toggles rotation without rotating", func(t *testing.T) {
		f := newRotationFixture(t)

		days := 30
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("SetRotationEnabled", mock.Anything, f.env.ID, true, &days, mock.AnythingOfType("time.Time")).
			Return(int64(4), nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionUpdate &&
				input.EntityType == auditDomain.EntityEnvironment &&
				input.Details["rotation_enabled"] == "true"
		})).Return(&auditDomain.AuditLog{}, nil)

		affected, err := f.engine.Schedule(ctx, "production", true, &days, testActor)
		require.NoError(t, err)
		assert.Equal(t, int64(4), affected)
		f.varRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.historyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("enabling without a period applies the installation default", func(t *testing.T) {
		f := newRotationFixture(t)

		defaultDays := 90
		f.settingsRepo.On("Get", mock.Anything).
			Return(&settingsDomain.AppSettings{RotationDefaultPeriodDays: defaultDays}, nil)
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("SetRotationEnabled", mock.Anything, f.env.ID, true, &defaultDays, mock.AnythingOfType("time.Time")).
			Return(int64(2), nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(&auditDomain.AuditLog{}, nil)

		affected, err := f.engine.Schedule(ctx, "production", true, nil, testActor)
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)
	})

	t.Run("disabling does not load the installation default", func(t *testing.T) {
		f := newRotationFixture(t)

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("SetRotationEnabled", mock.Anything, f.env.ID, false, (*int)(nil), mock.AnythingOfType("time.Time")).
			Return(int64(3), nil)
		f.auditLog.On("Append", mock.Anything, mock.Anything).Return(&auditDomain.AuditLog{}, nil)

		affected, err := f.engine.Schedule(ctx, "production", false, nil, testActor)
		require.NoError(t, err)
		assert.Equal(t, int64(3), affected)
		f.settingsRepo.AssertNotCalled(t, "Get", mock.Anything)
	})

	t.Run("rejects non-positive default period", func(t *testing.T) {
		f := newRotationFixture(t)

		days := -1
		_, err := f.engine.Schedule(ctx, "production", true, &days, testActor)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRotationEngine_History(t *testing.T) {
	ctx := context.Background()

	t.Run("by variable", func(t *testing.T) {
		f := newRotationFixture(t)

		variable := f.secretVariable("API_KEY", nil)
		expected := []*domain.RotationHistoryEntry{{ID: uuid.Must(uuid.NewV7())}}

		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.varRepo.On("GetByKey", mock.Anything, f.env.ID, "API_KEY").Return(variable, nil)
		f.historyRepo.On("ListByVariable", mock.Anything, variable.ID, 50).Return(expected, nil)

		entries, err := f.engine.History(ctx, "production", "API_KEY", 0)
		require.NoError(t, err)
		assert.Equal(t, expected, entries)
	})

	t.Run("by environment", func(t *testing.T) {
		f := newRotationFixture(t)

		expected := []*domain.RotationHistoryEntry{{ID: uuid.Must(uuid.NewV7())}}
		f.envRepo.On("GetByName", mock.Anything, "production").Return(f.env, nil)
		f.historyRepo.On("ListByEnvironment", mock.Anything, f.env.ID, 10).Return(expected, nil)

		entries, err := f.engine.History(ctx, "production", "", 10)
		require.NoError(t, err)
		assert.Equal(t, expected, entries)
	})
}
