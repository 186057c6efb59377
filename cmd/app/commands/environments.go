package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
)

// RunEnvCreate creates a new environment.
func RunEnvCreate(
	ctx context.Context,
	environments environmentsUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	name, description string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("creating environment", slog.String("name", name))

	env, err := environments.Create(ctx, environmentsUsecase.CreateEnvironmentInput{
		Name:        name,
		Description: description,
		Actor:       actor,
	})
	if err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"id":          env.ID.String(),
			"name":        env.Name,
			"description": env.Description,
		})
	}

	fmt.Fprintf(w, "Created environment %q\n", env.Name)
	return nil
}

// RunEnvList lists all environments.
func RunEnvList(
	ctx context.Context,
	environments environmentsUsecase.UseCase,
	w io.Writer,
	format string,
) error {
	envs, err := environments.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list environments: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(envs))
		for _, env := range envs {
			items = append(items, map[string]any{
				"id":          env.ID.String(),
				"name":        env.Name,
				"description": env.Description,
			})
		}
		return printJSON(w, items)
	}

	if len(envs) == 0 {
		fmt.Fprintln(w, "No environments found")
		return nil
	}
	for _, env := range envs {
		if env.Description != "" {
			fmt.Fprintf(w, "%s\t%s\n", env.Name, env.Description)
		} else {
			fmt.Fprintln(w, env.Name)
		}
	}
	return nil
}

// RunEnvClone copies an environment's variables into a new environment.
func RunEnvClone(
	ctx context.Context,
	environments environmentsUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	source, target, description string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("cloning environment",
		slog.String("source", source),
		slog.String("target", target),
	)

	env, copied, err := environments.Clone(ctx, environmentsUsecase.CloneEnvironmentInput{
		Source:      source,
		Target:      target,
		Description: description,
		Actor:       actor,
	})
	if err != nil {
		return fmt.Errorf("failed to clone environment: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"id":        env.ID.String(),
			"name":      env.Name,
			"source":    source,
			"variables": copied,
		})
	}

	fmt.Fprintf(w, "Cloned environment %q into %q (%d variable(s))\n", source, env.Name, copied)
	return nil
}

// RunEnvUse marks an environment as the installation default.
func RunEnvUse(
	ctx context.Context,
	settings settingsUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	name string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("setting default environment", slog.String("name", name))

	if err := settings.SetDefaultEnvironment(ctx, name, actor); err != nil {
		return fmt.Errorf("failed to set default environment: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{"default_environment": name})
	}

	fmt.Fprintf(w, "Default environment set to %q\n", name)
	return nil
}

// RunEnvDelete deletes an environment and all its variables.
func RunEnvDelete(
	ctx context.Context,
	environments environmentsUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	name string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("deleting environment", slog.String("name", name))

	if err := environments.Delete(ctx, name, actor); err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{"deleted": name})
	}

	fmt.Fprintf(w, "Deleted environment %q and its variables\n", name)
	return nil
}
