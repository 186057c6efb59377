package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
)

// RunInit sets up a fresh store: salt, master password digest, and defaults.
// Fails if the store is already initialized.
func RunInit(
	ctx context.Context,
	settings settingsUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	input settingsUsecase.InitializeInput,
	format string,
) error {
	logger.Info("initializing store", slog.String("project_name", input.ProjectName))

	created, err := settings.Initialize(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"project_name":                 created.ProjectName,
			"default_environment":          created.DefaultEnvironment,
			"rotation_default_period_days": created.RotationDefaultPeriodDays,
			"audit_retention_days":         created.AuditRetentionDays,
		})
	}

	fmt.Fprintf(w, "Initialized project %q\n", created.ProjectName)
	if created.DefaultEnvironment != "" {
		fmt.Fprintf(w, "Default environment: %s\n", created.DefaultEnvironment)
	}
	fmt.Fprintf(w, "Rotation default period: %d day(s)\n", created.RotationDefaultPeriodDays)
	fmt.Fprintf(w, "Audit retention: %d day(s)\n", created.AuditRetentionDays)
	return nil
}
