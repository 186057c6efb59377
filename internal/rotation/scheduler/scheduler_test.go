package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditMocks "github.com/allisson/envguard/internal/audit/usecase/mocks"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	envMocks "github.com/allisson/envguard/internal/environments/usecase/mocks"
	"github.com/allisson/envguard/internal/rotation/domain"
	rotationMocks "github.com/allisson/envguard/internal/rotation/usecase/mocks"
)

type schedulerFixture struct {
	scheduler *Scheduler
	engine    *rotationMocks.MockEngine
	auditLog  *auditMocks.MockAuditLogUseCase
	envs      *envMocks.MockEnvironmentRepository
}

func newSchedulerFixture(t *testing.T, cfg Config) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		engine:   new(rotationMocks.MockEngine),
		auditLog: new(auditMocks.MockAuditLogUseCase),
		envs:     new(envMocks.MockEnvironmentRepository),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.scheduler = New(f.engine, f.auditLog, f.envs, logger, cfg)
	return f
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	systemActor := auditDomain.SystemActor()

	t.Run("rotates due environments, skips idle ones, and purges", func(t *testing.T) {
		f := newSchedulerFixture(t, Config{RetentionDays: 90})

		f.envs.On("List", mock.Anything).Return([]*envDomain.Environment{
			{Name: "development"},
			{Name: "production"},
		}, nil)
		f.engine.On("RotateBatch", mock.Anything, "development", "scheduled", systemActor).
			Return(&domain.BatchResult{Rotated: 2}, nil)
		f.engine.On("RotateBatch", mock.Anything, "production", "scheduled", systemActor).
			Return(nil, domain.ErrNothingToRotate)
		f.auditLog.On("Purge", mock.Anything, 90, false).Return(int64(5), nil)

		f.scheduler.RunOnce(ctx)

		f.engine.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("a failing environment does not stop the pass", func(t *testing.T) {
		f := newSchedulerFixture(t, Config{RetentionDays: 90})

		f.envs.On("List", mock.Anything).Return([]*envDomain.Environment{
			{Name: "development"},
			{Name: "production"},
		}, nil)
		f.engine.On("RotateBatch", mock.Anything, "development", "scheduled", systemActor).
			Return(nil, errors.New("session locked"))
		f.engine.On("RotateBatch", mock.Anything, "production", "scheduled", systemActor).
			Return(&domain.BatchResult{
				Rotated:  1,
				Failures: []domain.Failure{{Key: "API_KEY", Err: errors.New("boom")}},
			}, nil)
		f.auditLog.On("Purge", mock.Anything, 90, false).Return(int64(0), nil)

		f.scheduler.RunOnce(ctx)

		f.engine.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("zero retention skips the purge", func(t *testing.T) {
		f := newSchedulerFixture(t, Config{})

		f.envs.On("List", mock.Anything).Return([]*envDomain.Environment{}, nil)

		f.scheduler.RunOnce(ctx)

		f.auditLog.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("listing failure aborts the pass", func(t *testing.T) {
		f := newSchedulerFixture(t, Config{RetentionDays: 90})

		f.envs.On("List", mock.Anything).Return(nil, errors.New("db down"))

		f.scheduler.RunOnce(ctx)

		f.engine.AssertNotCalled(t, "RotateBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.auditLog.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestScheduler_Run(t *testing.T) {
	t.Run("stops cleanly on cancellation", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		f := newSchedulerFixture(t, Config{CronSpec: "0 0 1 1 *"})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- f.scheduler.Run(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("scheduler did not stop")
		}
	})

	t.Run("rejects an invalid cron spec", func(t *testing.T) {
		f := newSchedulerFixture(t, Config{CronSpec: "not a cron spec"})

		err := f.scheduler.Run(context.Background())
		assert.Error(t, err)
	})
}
