package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
	settingsDomain "github.com/allisson/envguard/internal/settings/domain"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
)

// RunDashboard prints a summary of the installation: project settings,
// environments, and audit trail statistics.
func RunDashboard(
	ctx context.Context,
	settings settingsUsecase.UseCase,
	environments environmentsUsecase.UseCase,
	auditLog auditUsecase.AuditLogUseCase,
	w io.Writer,
	format string,
) error {
	appSettings, err := settings.Get(ctx)
	if err != nil {
		if errors.Is(err, settingsDomain.ErrNotInitialized) {
			return fmt.Errorf("store is not initialized, run 'init' first: %w", err)
		}
		return fmt.Errorf("failed to get settings: %w", err)
	}

	envs, err := environments.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list environments: %w", err)
	}

	stats, err := auditLog.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get audit stats: %w", err)
	}

	if format == "json" {
		envNames := make([]string, 0, len(envs))
		for _, env := range envs {
			envNames = append(envNames, env.Name)
		}
		byAction := make(map[string]int64, len(stats.CountByAction))
		for _, count := range stats.CountByAction {
			byAction[string(count.Action)] = count.Count
		}
		return printJSON(w, map[string]any{
			"project_name":         appSettings.ProjectName,
			"default_environment":  appSettings.DefaultEnvironment,
			"audit_retention_days": appSettings.AuditRetentionDays,
			"environments":         envNames,
			"audit_total_entries":  stats.TotalEntries,
			"audit_by_action":      byAction,
		})
	}

	fmt.Fprintf(w, "Project: %s\n", appSettings.ProjectName)
	if appSettings.DefaultEnvironment != "" {
		fmt.Fprintf(w, "Default environment: %s\n", appSettings.DefaultEnvironment)
	}
	fmt.Fprintf(w, "Environments: %d\n", len(envs))
	for _, env := range envs {
		fmt.Fprintf(w, "  %s\n", env.Name)
	}
	fmt.Fprintf(w, "Audit entries: %d\n", stats.TotalEntries)
	for _, count := range stats.CountByAction {
		fmt.Fprintf(w, "  %s: %d\n", count.Action, count.Count)
	}
	return nil
}
