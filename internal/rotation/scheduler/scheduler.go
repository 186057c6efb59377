// Package scheduler runs unattended rotation: a cron-driven daemon that
// rotates due secrets across every environment and purges expired audit logs,
// with a metrics endpoint for scrape-based monitoring.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	rotationDomain "github.com/allisson/envguard/internal/rotation/domain"
	rotationUsecase "github.com/allisson/envguard/internal/rotation/usecase"
)

// shutdownTimeout bounds the metrics server drain on shutdown.
const shutdownTimeout = 5 * time.Second

// Config holds the scheduler daemon configuration.
type Config struct {
	// CronSpec is the standard 5-field cron expression for rotation runs.
	CronSpec string
	// RetentionDays is the audit log retention window purged after each run.
	// Zero disables purging.
	RetentionDays int
	// MetricsAddr is the listen address for the metrics endpoint. Empty
	// disables the metrics server.
	MetricsAddr string
	// MetricsHandler serves the metrics endpoint scrape requests.
	MetricsHandler http.Handler
}

// EnvironmentLister lists the environments a rotation run covers.
type EnvironmentLister interface {
	List(ctx context.Context) ([]*envDomain.Environment, error)
}

// Scheduler is the rotation daemon. It owns a cron runner and an optional
// metrics HTTP server, both stopped when the run context is cancelled.
type Scheduler struct {
	engine   rotationUsecase.Engine
	auditLog auditUsecase.AuditLogUseCase
	envs     EnvironmentLister
	logger   *slog.Logger
	cfg      Config
}

// New creates a new Scheduler.
func New(
	engine rotationUsecase.Engine,
	auditLog auditUsecase.AuditLogUseCase,
	envs EnvironmentLister,
	logger *slog.Logger,
	cfg Config,
) *Scheduler {
	return &Scheduler{
		engine:   engine,
		auditLog: auditLog,
		envs:     envs,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run starts the cron runner and the metrics server and blocks until the
// context is cancelled or the metrics server fails. Cancellation waits for an
// in-flight rotation run to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	runner := cron.New()
	if _, err := runner.AddFunc(s.cfg.CronSpec, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runner.Start()
		s.logger.Info("rotation scheduler started", slog.String("cron_spec", s.cfg.CronSpec))

		<-ctx.Done()

		// Stop returns a context that is done once running jobs complete.
		<-runner.Stop().Done()
		s.logger.Info("rotation scheduler stopped")
		return nil
	})

	if s.cfg.MetricsAddr != "" && s.cfg.MetricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.cfg.MetricsHandler)
		server := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			s.logger.Info("metrics server started", slog.String("addr", s.cfg.MetricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// RunOnce performs one scheduled pass: a batch rotation per environment
// followed by the audit retention purge. Failures are logged and never stop
// the pass; the scheduler's job is to keep trying on the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) {
	actor := auditDomain.SystemActor()

	environments, err := s.envs.List(ctx)
	if err != nil {
		s.logger.Error("failed to list environments", slog.Any("error", err))
		return
	}

	for _, env := range environments {
		result, err := s.engine.RotateBatch(ctx, env.Name, "scheduled", actor)
		if errors.Is(err, rotationDomain.ErrNothingToRotate) {
			continue
		}
		if err != nil {
			s.logger.Error(
				"batch rotation failed",
				slog.String("environment", env.Name),
				slog.Any("error", err),
			)
			continue
		}

		for _, failure := range result.Failures {
			s.logger.Error(
				"variable rotation failed",
				slog.String("environment", env.Name),
				slog.String("key", failure.Key),
				slog.Any("error", failure.Err),
			)
		}

		if result.Rotated > 0 || result.Failed() > 0 {
			s.logger.Info(
				"batch rotation finished",
				slog.String("environment", env.Name),
				slog.Int("rotated", result.Rotated),
				slog.Int("failed", len(result.Failures)),
			)
		}
	}

	if s.cfg.RetentionDays > 0 {
		purged, err := s.auditLog.Purge(ctx, s.cfg.RetentionDays, false)
		if err != nil {
			s.logger.Error("audit log purge failed", slog.Any("error", err))
			return
		}
		if purged > 0 {
			s.logger.Info(
				"audit logs purged",
				slog.Int64("purged", purged),
				slog.Int("retention_days", s.cfg.RetentionDays),
			)
		}
	}
}
