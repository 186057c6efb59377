package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/envguard/internal/app"
	"github.com/allisson/envguard/internal/config"
)

// RunScheduler starts the rotation scheduler daemon with graceful shutdown
// support. The daemon needs the master password non-interactively (flag or
// ENVGUARD_MASTER_PASSWORD) because it unlocks the session once at startup
// and keeps rotating until SIGINT/SIGTERM.
func RunScheduler(ctx context.Context, passwordFlag string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer CloseContainer(container, logger)

	settings, err := container.SettingsUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize settings use case: %w", err)
	}

	password := passwordFlag
	if password == "" {
		password = cfg.MasterPassword
	}
	if password == "" {
		return fmt.Errorf("scheduler requires the master password via --password or ENVGUARD_MASTER_PASSWORD")
	}

	if err := settings.Unlock(ctx, password); err != nil {
		return fmt.Errorf("failed to unlock session: %w", err)
	}

	rotationScheduler, err := container.RotationScheduler()
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	logger.Info("starting rotation scheduler",
		slog.String("cron_spec", cfg.SchedulerCronSpec),
		slog.Int("metrics_port", cfg.MetricsPort),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return rotationScheduler.Run(ctx)
}
