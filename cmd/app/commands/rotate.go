package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	rotationDomain "github.com/allisson/envguard/internal/rotation/domain"
	rotationUsecase "github.com/allisson/envguard/internal/rotation/usecase"
)

// RunRotateRun rotates due secrets in an environment. With a key only that
// variable is rotated, due or not.
func RunRotateRun(
	ctx context.Context,
	engine rotationUsecase.Engine,
	logger *slog.Logger,
	w io.Writer,
	environment, key, reason string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("rotating secrets",
		slog.String("environment", environment),
		slog.String("key", key),
	)

	if key != "" {
		variable, err := engine.Rotate(ctx, environment, key, reason, actor)
		if err != nil {
			return fmt.Errorf("failed to rotate variable: %w", err)
		}

		if format == "json" {
			return printJSON(w, map[string]any{
				"rotated":       1,
				"key":           variable.Key,
				"next_rotation": variable.NextRotation,
			})
		}
		fmt.Fprintf(w, "Rotated %s/%s\n", environment, variable.Key)
		return nil
	}

	result, err := engine.RotateBatch(ctx, environment, reason, actor)
	if errors.Is(err, rotationDomain.ErrNothingToRotate) {
		if format == "json" {
			return printJSON(w, map[string]any{"rotated": 0, "failures": []map[string]any{}})
		}
		fmt.Fprintln(w, "No secrets due for rotation")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to rotate batch: %w", err)
	}

	if format == "json" {
		failures := make([]map[string]any, 0, len(result.Failures))
		for _, failure := range result.Failures {
			failures = append(failures, map[string]any{
				"key":   failure.Key,
				"error": failure.Err.Error(),
			})
		}
		return printJSON(w, map[string]any{
			"rotated":  result.Rotated,
			"failures": failures,
		})
	}

	fmt.Fprintf(w, "Rotated %d secret(s)\n", result.Rotated)
	for _, failure := range result.Failures {
		fmt.Fprintf(w, "Failed %s: %v\n", failure.Key, failure.Err)
	}
	return nil
}

// RunRotateStatus lists rotation-enabled secrets and their due times.
func RunRotateStatus(
	ctx context.Context,
	engine rotationUsecase.Engine,
	w io.Writer,
	environment string,
	includeNonExpired bool,
	format string,
) error {
	variables, err := engine.DueSecrets(ctx, environment, includeNonExpired)
	if err != nil {
		return fmt.Errorf("failed to list due secrets: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(variables))
		for _, variable := range variables {
			item := map[string]any{"key": variable.Key}
			if variable.RotationPeriodDays != nil {
				item["rotation_period_days"] = *variable.RotationPeriodDays
			}
			if variable.LastRotated != nil {
				item["last_rotated"] = variable.LastRotated
			}
			if variable.NextRotation != nil {
				item["next_rotation"] = variable.NextRotation
			}
			items = append(items, item)
		}
		return printJSON(w, items)
	}

	if len(variables) == 0 {
		fmt.Fprintln(w, "No secrets due for rotation")
		return nil
	}
	for _, variable := range variables {
		due := "on demand"
		if variable.NextRotation != nil {
			due = variable.NextRotation.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", variable.Key, due)
	}
	return nil
}

// RunRotateHistory shows rotation history for a variable or a whole environment.
func RunRotateHistory(
	ctx context.Context,
	engine rotationUsecase.Engine,
	w io.Writer,
	environment, key string,
	limit int,
	format string,
) error {
	entries, err := engine.History(ctx, environment, key, limit)
	if err != nil {
		return fmt.Errorf("failed to get rotation history: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			items = append(items, map[string]any{
				"variable_id":           entry.VariableID.String(),
				"rotated_at":            entry.RotatedAt.Format(time.RFC3339Nano),
				"old_value_fingerprint": entry.OldValueFingerprint,
				"new_value_fingerprint": entry.NewValueFingerprint,
				"rotated_by":            entry.RotatedBy,
				"reason":                entry.Reason,
			})
		}
		return printJSON(w, items)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No rotation history found")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			entry.RotatedAt.Format(time.RFC3339),
			entry.RotatedBy,
			entry.Reason,
		)
	}
	return nil
}

// RunRotateSchedule bulk-toggles rotation for every secret in an environment.
func RunRotateSchedule(
	ctx context.Context,
	engine rotationUsecase.Engine,
	logger *slog.Logger,
	w io.Writer,
	environment string,
	enable bool,
	periodDays *int,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("scheduling rotation",
		slog.String("environment", environment),
		slog.Bool("enable", enable),
	)

	affected, err := engine.Schedule(ctx, environment, enable, periodDays, actor)
	if err != nil {
		return fmt.Errorf("failed to schedule rotation: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"environment": environment,
			"enabled":     enable,
			"affected":    affected,
		})
	}

	state := "disabled"
	if enable {
		state = "enabled"
	}
	fmt.Fprintf(w, "Rotation %s for %d secret(s) in %q\n", state, affected, environment)
	return nil
}
