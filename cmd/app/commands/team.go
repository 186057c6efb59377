package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/users/domain"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
)

// RunTeamAdd creates a team member with the given role.
func RunTeamAdd(
	ctx context.Context,
	users usersUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	name, password, role string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("adding team member",
		slog.String("name", name),
		slog.String("role", role),
	)

	user, err := users.Create(ctx, usersUsecase.CreateUserInput{
		Name:     name,
		Password: password,
		Role:     domain.Role(role),
		Actor:    actor,
	})
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"id":   user.ID.String(),
			"name": user.Name,
			"role": string(user.Role),
		})
	}

	fmt.Fprintf(w, "Added team member %q with role %s\n", user.Name, user.Role)
	return nil
}

// RunTeamList lists all team members.
func RunTeamList(
	ctx context.Context,
	users usersUsecase.UseCase,
	w io.Writer,
	format string,
) error {
	members, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list team members: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(members))
		for _, member := range members {
			items = append(items, map[string]any{
				"id":   member.ID.String(),
				"name": member.Name,
				"role": string(member.Role),
			})
		}
		return printJSON(w, items)
	}

	if len(members) == 0 {
		fmt.Fprintln(w, "No team members found")
		return nil
	}
	for _, member := range members {
		fmt.Fprintf(w, "%s\t%s\n", member.Name, member.Role)
	}
	return nil
}

// RunTeamRemove deletes a team member by name.
func RunTeamRemove(
	ctx context.Context,
	users usersUsecase.UseCase,
	logger *slog.Logger,
	w io.Writer,
	name string,
	actor auditDomain.Actor,
	format string,
) error {
	logger.Info("removing team member", slog.String("name", name))

	if err := users.Delete(ctx, name, actor); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{"removed": name})
	}

	fmt.Fprintf(w, "Removed team member %q\n", name)
	return nil
}
