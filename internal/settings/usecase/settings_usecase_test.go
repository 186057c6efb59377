package usecase_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	auditMocks "github.com/allisson/envguard/internal/audit/usecase/mocks"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	envMocks "github.com/allisson/envguard/internal/environments/usecase/mocks"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/settings/domain"
	"github.com/allisson/envguard/internal/settings/usecase/mocks"
	"github.com/allisson/envguard/internal/testutil"

	. "github.com/allisson/envguard/internal/settings/usecase"
)

var testActor = auditDomain.Actor{ID: "u1", Name: "alice", IPAddress: "127.0.0.1"}

type settingsFixture struct {
	uc       *SettingsUseCase
	repo     *mocks.MockSettingsRepository
	envRepo  *envMocks.MockEnvironmentRepository
	auditLog *auditMocks.MockAuditLogUseCase
	session  *cryptoDomain.MasterKeySession
	hasher   cryptoService.PasswordHasher
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()

	f := &settingsFixture{
		repo:     new(mocks.MockSettingsRepository),
		envRepo:  new(envMocks.MockEnvironmentRepository),
		auditLog: new(auditMocks.MockAuditLogUseCase),
		session:  cryptoDomain.NewMasterKeySession(),
		hasher:   cryptoService.NewPasswordHasher(),
	}
	f.uc = NewSettingsUseCase(
		&testutil.PassthroughTxManager{},
		f.repo,
		f.envRepo,
		f.hasher,
		cryptoService.NewKeyDeriver(1000),
		f.session,
		f.auditLog,
	)
	return f
}

func (f *settingsFixture) storedSettings(t *testing.T, password string) *domain.AppSettings {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &domain.AppSettings{
		ProjectName:               "envguard",
		Salt:                      "00112233445566778899aabbccddeeff",
		MasterPasswordDigest:      digest,
		DefaultEnvironment:        "development",
		RotationDefaultPeriodDays: 90,
		AuditRetentionDays:        90,
	}
}

func TestSettingsUseCase_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("creates settings with salt and digest", func(t *testing.T) {
		f := newSettingsFixture(t)

		var created *domain.AppSettings
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AppSettings")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*domain.AppSettings)
			}).
			Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionCreate &&
				input.EntityType == auditDomain.EntitySettings
		})).Return(&auditDomain.AuditLog{}, nil)

		settings, err := f.uc.Initialize(ctx, InitializeInput{
			ProjectName:               "envguard",
			MasterPassword:            "correct horse battery staple",
			DefaultEnvironment:        "development",
			RotationDefaultPeriodDays: 90,
			AuditRetentionDays:        90,
			Actor:                     testActor,
		})
		require.NoError(t, err)
		assert.Same(t, settings, created)

		// 16 random bytes hex-encoded.
		salt, err := hex.DecodeString(settings.Salt)
		require.NoError(t, err)
		assert.Len(t, salt, 16)

		// The digest verifies the password and never contains it.
		assert.True(t, f.hasher.Verify("correct horse battery staple", settings.MasterPasswordDigest))
		assert.NotContains(t, settings.MasterPasswordDigest, "correct horse")
	})

	t.Run("rejects short master passwords", func(t *testing.T) {
		f := newSettingsFixture(t)

		_, err := f.uc.Initialize(ctx, InitializeInput{
			ProjectName:               "envguard",
			MasterPassword:            "short",
			RotationDefaultPeriodDays: 90,
			AuditRetentionDays:        90,
			Actor:                     testActor,
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("fails on an already initialized store", func(t *testing.T) {
		f := newSettingsFixture(t)

		f.repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyInitialized)

		_, err := f.uc.Initialize(ctx, InitializeInput{
			ProjectName:               "envguard",
			MasterPassword:            "correct horse battery staple",
			RotationDefaultPeriodDays: 90,
			AuditRetentionDays:        90,
			Actor:                     testActor,
		})
		require.ErrorIs(t, err, domain.ErrAlreadyInitialized)
	})
}

func TestSettingsUseCase_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password installs the derived key", func(t *testing.T) {
		f := newSettingsFixture(t)
		stored := f.storedSettings(t, "correct horse battery staple")
		f.repo.On("Get", mock.Anything).Return(stored, nil)

		require.NoError(t, f.uc.Unlock(ctx, "correct horse battery staple"))
		assert.True(t, f.session.Established())

		// The installed key matches a fresh derivation from the stored salt.
		salt, err := hex.DecodeString(stored.Salt)
		require.NoError(t, err)
		expected := cryptoService.NewKeyDeriver(1000).DeriveKey("correct horse battery staple", salt)
		got, err := f.session.Acquire()
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("wrong password fails before touching the session", func(t *testing.T) {
		f := newSettingsFixture(t)
		stored := f.storedSettings(t, "correct horse battery staple")
		f.repo.On("Get", mock.Anything).Return(stored, nil)

		err := f.uc.Unlock(ctx, "wrong password entirely")
		require.ErrorIs(t, err, cryptoDomain.ErrInvalidMasterPassword)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.False(t, f.session.Established())
	})

	t.Run("repeated unlock with the correct password is a no-op", func(t *testing.T) {
		f := newSettingsFixture(t)
		stored := f.storedSettings(t, "correct horse battery staple")
		f.repo.On("Get", mock.Anything).Return(stored, nil)

		require.NoError(t, f.uc.Unlock(ctx, "correct horse battery staple"))
		first, err := f.session.Acquire()
		require.NoError(t, err)

		require.NoError(t, f.uc.Unlock(ctx, "correct horse battery staple"))
		second, err := f.session.Acquire()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("uninitialized store fails with not initialized", func(t *testing.T) {
		f := newSettingsFixture(t)
		f.repo.On("Get", mock.Anything).Return(nil, domain.ErrNotInitialized)

		err := f.uc.Unlock(ctx, "anything at all")
		require.ErrorIs(t, err, domain.ErrNotInitialized)
	})
}

func TestSettingsUseCase_Lock(t *testing.T) {
	f := newSettingsFixture(t)
	stored := f.storedSettings(t, "correct horse battery staple")
	f.repo.On("Get", mock.Anything).Return(stored, nil)

	require.NoError(t, f.uc.Unlock(context.Background(), "correct horse battery staple"))
	require.True(t, f.session.Established())

	f.uc.Lock()
	assert.False(t, f.session.Established())
}

func TestSettingsUseCase_SetDefaultEnvironment(t *testing.T) {
	ctx := context.Background()

	t.Run("points at an existing environment", func(t *testing.T) {
		f := newSettingsFixture(t)
		stored := f.storedSettings(t, "correct horse battery staple")
		stored.UpdatedAt = time.Now().UTC().Add(-time.Hour)

		f.envRepo.On("GetByName", mock.Anything, "production").Return(&envDomain.Environment{Name: "production"}, nil)
		f.repo.On("Get", mock.Anything).Return(stored, nil)
		f.repo.On("Update", mock.Anything, stored).Return(nil)
		f.auditLog.On("Append", mock.Anything, mock.MatchedBy(func(input auditUsecase.AppendInput) bool {
			return input.Action == auditDomain.ActionUpdate &&
				input.OldValue == "development" && input.NewValue == "production"
		})).Return(&auditDomain.AuditLog{}, nil)

		require.NoError(t, f.uc.SetDefaultEnvironment(ctx, "production", testActor))
		assert.Equal(t, "production", stored.DefaultEnvironment)
	})

	t.Run("unknown environment fails with not found", func(t *testing.T) {
		f := newSettingsFixture(t)
		f.envRepo.On("GetByName", mock.Anything, "missing").Return(nil, envDomain.ErrEnvironmentNotFound)

		err := f.uc.SetDefaultEnvironment(ctx, "missing", testActor)
		require.ErrorIs(t, err, envDomain.ErrEnvironmentNotFound)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
