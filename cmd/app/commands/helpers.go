// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/envguard/internal/app"
	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/config"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
	usersDomain "github.com/allisson/envguard/internal/users/domain"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// CloseContainer closes all resources in the container and logs any errors.
func CloseContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// ResolveMasterPassword picks the master password from the --password flag,
// the ENVGUARD_MASTER_PASSWORD environment variable, or one line read from
// the reader, in that order.
func ResolveMasterPassword(cfg *config.Config, flagValue string, reader io.Reader, writer io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.MasterPassword != "" {
		return cfg.MasterPassword, nil
	}

	fmt.Fprint(writer, "Master password: ")
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read master password: %w", err)
		}
		return "", fmt.Errorf("no master password provided")
	}

	password := strings.TrimSpace(scanner.Text())
	if password == "" {
		return "", fmt.Errorf("no master password provided")
	}
	return password, nil
}

// UnlockSession resolves the master password and installs the derived key
// into the session so secret operations can encrypt and decrypt.
func UnlockSession(
	ctx context.Context,
	settings settingsUsecase.UseCase,
	cfg *config.Config,
	passwordFlag string,
	io IOTuple,
) error {
	password, err := ResolveMasterPassword(cfg, passwordFlag, io.Reader, io.Writer)
	if err != nil {
		return err
	}
	return settings.Unlock(ctx, password)
}

// ResolveActor authenticates the named team member and returns the actor
// recorded in the audit trail. Without a user name the system actor is used.
func ResolveActor(
	ctx context.Context,
	users usersUsecase.UseCase,
	userName, userPassword string,
) (auditDomain.Actor, error) {
	actor, _, err := resolveUserActor(ctx, users, userName, userPassword)
	return actor, err
}

// ResolveWriteActor is ResolveActor plus a role check: an authenticated user
// must be allowed to mutate variables and environments.
func ResolveWriteActor(
	ctx context.Context,
	users usersUsecase.UseCase,
	userName, userPassword string,
) (auditDomain.Actor, error) {
	actor, user, err := resolveUserActor(ctx, users, userName, userPassword)
	if err != nil {
		return auditDomain.Actor{}, err
	}
	if user != nil && !user.Role.CanWrite() {
		return auditDomain.Actor{}, usersDomain.ErrPermissionDenied
	}
	return actor, nil
}

// ResolveAdminActor is ResolveActor plus a role check: an authenticated user
// must hold the admin role.
func ResolveAdminActor(
	ctx context.Context,
	users usersUsecase.UseCase,
	userName, userPassword string,
) (auditDomain.Actor, error) {
	actor, user, err := resolveUserActor(ctx, users, userName, userPassword)
	if err != nil {
		return auditDomain.Actor{}, err
	}
	if user != nil && !user.Role.CanAdmin() {
		return auditDomain.Actor{}, usersDomain.ErrPermissionDenied
	}
	return actor, nil
}

// resolveUserActor authenticates when a user name is given. The system actor
// (nil user) stands in for the operator holding the master password.
func resolveUserActor(
	ctx context.Context,
	users usersUsecase.UseCase,
	userName, userPassword string,
) (auditDomain.Actor, *usersDomain.User, error) {
	if userName == "" {
		return auditDomain.SystemActor(), nil, nil
	}

	user, err := users.Authenticate(ctx, userName, userPassword)
	if err != nil {
		return auditDomain.Actor{}, nil, err
	}

	return auditDomain.Actor{
		ID:        user.ID.String(),
		Name:      user.Name,
		IPAddress: "localhost",
	}, user, nil
}

// printJSON writes the value as indented JSON to the writer.
func printJSON(w io.Writer, value any) error {
	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(jsonBytes))
	return nil
}
