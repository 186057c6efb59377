package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/variables/domain"
	variablesUsecase "github.com/allisson/envguard/internal/variables/usecase"
)

// RunVarSet creates or updates a variable. Secret values need an unlocked
// session; they are encrypted before anything is written.
func RunVarSet(
	ctx context.Context,
	store variablesUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	input variablesUsecase.SetVariableInput,
	format string,
) error {
	logger.Info("setting variable",
		slog.String("environment", input.Environment),
		slog.String("key", input.Key),
		slog.Bool("secret", input.IsSecret),
	)

	variable, err := store.Set(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to set variable: %w", err)
	}

	if format == "json" {
		return printJSON(w, variableSummary(input.Environment, variable))
	}

	fmt.Fprintf(w, "Set %s/%s\n", input.Environment, variable.Key)
	return nil
}

// RunVarGet retrieves a variable. With reveal the secret value is decrypted
// under the session key; without it the stored ciphertext is shown.
func RunVarGet(
	ctx context.Context,
	store variablesUsecase.SecretStore,
	w io.Writer,
	environment, key string,
	reveal bool,
	format string,
) error {
	variable, err := store.Get(ctx, environment, key, reveal)
	if err != nil {
		return fmt.Errorf("failed to get variable: %w", err)
	}

	if format == "json" {
		summary := variableSummary(environment, variable)
		summary["value"] = variable.Value
		return printJSON(w, summary)
	}

	fmt.Fprintln(w, variable.Value)
	return nil
}

// RunVarDelete removes a variable.
func RunVarDelete(
	ctx context.Context,
	store variablesUsecase.SecretStore,
	logger *slog.Logger,
	w io.Writer,
	environment, key string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("deleting variable",
		slog.String("environment", environment),
		slog.String("key", key),
	)

	if err := store.Delete(ctx, environment, key, actor); err != nil {
		return fmt.Errorf("failed to delete variable: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{"deleted": environment + "/" + key})
	}

	fmt.Fprintf(w, "Deleted %s/%s\n", environment, key)
	return nil
}

// RunVarList lists an environment's variables, optionally filtered by tag,
// key substring, or secrets only. Values are never revealed here.
func RunVarList(
	ctx context.Context,
	store variablesUsecase.SecretStore,
	w io.Writer,
	environment string,
	filter domain.ListFilter,
	format string,
) error {
	variables, err := store.List(ctx, environment, filter)
	if err != nil {
		return fmt.Errorf("failed to list variables: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(variables))
		for _, variable := range variables {
			items = append(items, variableSummary(environment, variable))
		}
		return printJSON(w, items)
	}

	if len(variables) == 0 {
		fmt.Fprintln(w, "No variables found")
		return nil
	}
	for _, variable := range variables {
		kind := "plain"
		if variable.IsSecret {
			kind = "secret"
		}
		line := fmt.Sprintf("%s\t%s", variable.Key, kind)
		if len(variable.Tags) > 0 {
			line += "\t" + strings.Join(variable.Tags, ",")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// variableSummary builds the JSON representation of a variable without its value.
func variableSummary(environment string, variable *domain.Variable) map[string]any {
	summary := map[string]any{
		"environment": environment,
		"key":         variable.Key,
		"is_secret":   variable.IsSecret,
		"encrypted":   variable.Encrypted,
		"tags":        variable.Tags,
		"description": variable.Description,
	}
	if variable.RotationEnabled {
		summary["rotation_enabled"] = true
		if variable.RotationPeriodDays != nil {
			summary["rotation_period_days"] = *variable.RotationPeriodDays
		}
		if variable.NextRotation != nil {
			summary["next_rotation"] = variable.NextRotation
		}
	}
	return summary
}
