// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envguard/cmd/app/commands"
	"github.com/allisson/envguard/internal/app"
	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/config"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
	variablesDomain "github.com/allisson/envguard/internal/variables/domain"
	variablesUsecase "github.com/allisson/envguard/internal/variables/usecase"
)

// setup loads configuration and builds the DI container for a command run.
func setup() (*config.Config, *app.Container, *slog.Logger) {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	return cfg, container, container.Logger()
}

// actorResolver matches the commands.Resolve*Actor helpers, which differ only
// in the role they require of an authenticated user.
type actorResolver func(context.Context, usersUsecase.UseCase, string, string) (auditDomain.Actor, error)

// resolveActor builds the audit actor from the --user and --user-password
// flags, falling back to the system actor when no user is given.
func resolveActor(
	ctx context.Context,
	container *app.Container,
	cmd *cli.Command,
	resolve actorResolver,
) (auditDomain.Actor, error) {
	users, err := container.UserUseCase()
	if err != nil {
		return auditDomain.Actor{}, fmt.Errorf("failed to initialize user use case: %w", err)
	}
	return resolve(ctx, users, cmd.String("user"), cmd.String("user-password"))
}

// unlock installs the master key into the session for commands that need to
// encrypt or decrypt secret values.
func unlock(ctx context.Context, cfg *config.Config, container *app.Container, cmd *cli.Command) error {
	settings, err := container.SettingsUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize settings use case: %w", err)
	}
	return commands.UnlockSession(ctx, settings, cfg, cmd.String("password"), commands.DefaultIO())
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func masterPasswordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "Master password (falls back to ENVGUARD_MASTER_PASSWORD or a prompt)",
	}
}

func actorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "user",
			Usage: "Team member performing the action (omit for the system actor)",
		},
		&cli.StringFlag{
			Name:  "user-password",
			Usage: "Password of the acting team member",
		},
	}
}

func parseTimeFlag(cmd *cli.Command, name string) (*time.Time, error) {
	raw := cmd.String(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value %q, expected RFC3339: %w", name, raw, err)
	}
	return &parsed, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func main() {
	cmd := &cli.Command{
		Name:    "envguard",
		Usage:   "Local secrets manager with envelope encryption and audit trail",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize the store with a project name and master password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Required: true,
						Usage:    "Project name",
					},
					masterPasswordFlag(),
					&cli.StringFlag{
						Name:  "default-env",
						Value: "development",
						Usage: "Name recorded as the default environment",
					},
					&cli.IntFlag{
						Name:  "rotation-days",
						Value: 90,
						Usage: "Default rotation period in days for new secrets",
					},
					&cli.IntFlag{
						Name:  "retention-days",
						Value: 90,
						Usage: "Audit log retention in days",
					},
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, container, logger := setup()
					defer commands.CloseContainer(container, logger)

					settings, err := container.SettingsUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize settings use case: %w", err)
					}

					io := commands.DefaultIO()
					password, err := commands.ResolveMasterPassword(cfg, cmd.String("password"), io.Reader, io.Writer)
					if err != nil {
						return err
					}

					rotationDays := cmd.Int("rotation-days")
					if !cmd.IsSet("rotation-days") {
						rotationDays = cfg.RotationDefaultPeriodDays
					}
					retentionDays := cmd.Int("retention-days")
					if !cmd.IsSet("retention-days") {
						retentionDays = cfg.AuditRetentionDays
					}

					return commands.RunInit(ctx, settings, logger, io.Writer, settingsUsecase.InitializeInput{
						ProjectName:               cmd.String("project"),
						MasterPassword:            password,
						DefaultEnvironment:        cmd.String("default-env"),
						RotationDefaultPeriodDays: rotationDays,
						AuditRetentionDays:        retentionDays,
						Actor:                     auditDomain.SystemActor(),
					}, cmd.String("format"))
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "env",
				Usage: "Manage environments",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "Create a new environment",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Environment description",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							environments, err := container.EnvironmentUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize environment use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunEnvCreate(
								ctx,
								environments,
								logger,
								os.Stdout,
								cmd.String("name"),
								cmd.String("description"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "list",
						Usage: "List environments",
						Flags: []cli.Flag{formatFlag()},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							environments, err := container.EnvironmentUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize environment use case: %w", err)
							}

							return commands.RunEnvList(ctx, environments, os.Stdout, cmd.String("format"))
						},
					},
					{
						Name:  "clone",
						Usage: "Copy an environment's variables into a new environment",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "source",
								Aliases:  []string{"s"},
								Required: true,
								Usage:    "Environment to copy from",
							},
							&cli.StringFlag{
								Name:     "target",
								Aliases:  []string{"t"},
								Required: true,
								Usage:    "Name of the new environment",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Description for the new environment",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							environments, err := container.EnvironmentUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize environment use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunEnvClone(
								ctx,
								environments,
								logger,
								os.Stdout,
								cmd.String("source"),
								cmd.String("target"),
								cmd.String("description"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "use",
						Usage: "Mark an environment as the installation default",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Required: true,
								Usage:    "Environment name",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							settings, err := container.SettingsUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize settings use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunEnvUse(
								ctx,
								settings,
								logger,
								os.Stdout,
								cmd.String("name"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "delete",
						Usage: "Delete an environment and all its variables",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Required: true,
								Usage:    "Environment name",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							environments, err := container.EnvironmentUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize environment use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunEnvDelete(
								ctx,
								environments,
								logger,
								os.Stdout,
								cmd.String("name"),
								actor,
								cmd.String("format"),
							)
						},
					},
				},
			},
			{
				Name:  "var",
				Usage: "Manage variables and secrets",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "Create or update a variable",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:     "key",
								Aliases:  []string{"k"},
								Required: true,
								Usage:    "Variable key",
							},
							&cli.StringFlag{
								Name:     "value",
								Aliases:  []string{"v"},
								Required: true,
								Usage:    "Variable value",
							},
							&cli.BoolFlag{
								Name:    "secret",
								Aliases: []string{"s"},
								Usage:   "Store the value encrypted",
							},
							&cli.StringFlag{
								Name:  "tags",
								Usage: "Comma-separated tags",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Variable description",
							},
							&cli.IntFlag{
								Name:  "rotation-days",
								Usage: "Enable rotation with this period in days",
							},
							masterPasswordFlag(),
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							cfg, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							if cmd.Bool("secret") {
								if err := unlock(ctx, cfg, container, cmd); err != nil {
									return err
								}
							}
							store, err := container.SecretStore()
							if err != nil {
								return fmt.Errorf("failed to initialize secret store: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							input := variablesUsecase.SetVariableInput{
								Environment: cmd.String("env"),
								Key:         cmd.String("key"),
								Value:       cmd.String("value"),
								IsSecret:    cmd.Bool("secret"),
								Tags:        splitTags(cmd.String("tags")),
								Description: cmd.String("description"),
								Actor:       actor,
							}
							if days := cmd.Int("rotation-days"); days > 0 {
								input.RotationDays = &days
							}

							return commands.RunVarSet(ctx, store, logger, os.Stdout, input, cmd.String("format"))
						},
					},
					{
						Name:  "get",
						Usage: "Get a variable",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:     "key",
								Aliases:  []string{"k"},
								Required: true,
								Usage:    "Variable key",
							},
							&cli.BoolFlag{
								Name:  "reveal",
								Usage: "Decrypt and show the secret value",
							},
							masterPasswordFlag(),
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							cfg, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							if cmd.Bool("reveal") {
								if err := unlock(ctx, cfg, container, cmd); err != nil {
									return err
								}
							}
							store, err := container.SecretStore()
							if err != nil {
								return fmt.Errorf("failed to initialize secret store: %w", err)
							}

							return commands.RunVarGet(
								ctx,
								store,
								os.Stdout,
								cmd.String("env"),
								cmd.String("key"),
								cmd.Bool("reveal"),
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "delete",
						Usage: "Delete a variable",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:     "key",
								Aliases:  []string{"k"},
								Required: true,
								Usage:    "Variable key",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							store, err := container.SecretStore()
							if err != nil {
								return fmt.Errorf("failed to initialize secret store: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunVarDelete(
								ctx,
								store,
								logger,
								os.Stdout,
								cmd.String("env"),
								cmd.String("key"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "list",
						Usage: "List variables in an environment",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:  "tag",
								Usage: "Keep only variables carrying this tag",
							},
							&cli.StringFlag{
								Name:  "search",
								Usage: "Keep only variables whose key contains this substring",
							},
							&cli.BoolFlag{
								Name:  "secrets-only",
								Usage: "Keep only secret variables",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							store, err := container.SecretStore()
							if err != nil {
								return fmt.Errorf("failed to initialize secret store: %w", err)
							}

							return commands.RunVarList(ctx, store, os.Stdout, cmd.String("env"), variablesDomain.ListFilter{
								Tag:         cmd.String("tag"),
								KeySearch:   cmd.String("search"),
								SecretsOnly: cmd.Bool("secrets-only"),
							}, cmd.String("format"))
						},
					},
				},
			},
			{
				Name:  "audit",
				Usage: "Inspect and maintain the audit trail",
				Commands: []*cli.Command{
					{
						Name:  "view",
						Usage: "Query audit log entries",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "action",
								Usage: "Filter by action (create, update, delete, rotate, export, import, clone)",
							},
							&cli.StringFlag{
								Name:  "entity-type",
								Usage: "Filter by entity type (environment, variable, user, settings)",
							},
							&cli.StringFlag{
								Name:  "entity-id",
								Usage: "Filter by entity identifier",
							},
							&cli.StringFlag{
								Name:  "since",
								Usage: "Keep entries at or after this RFC3339 timestamp",
							},
							&cli.StringFlag{
								Name:  "until",
								Usage: "Keep entries before this RFC3339 timestamp",
							},
							&cli.IntFlag{
								Name:  "limit",
								Value: 100,
								Usage: "Maximum number of entries",
							},
							&cli.IntFlag{
								Name:  "offset",
								Usage: "Number of entries to skip",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							auditLog, err := container.AuditLogUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize audit log use case: %w", err)
							}

							start, err := parseTimeFlag(cmd, "since")
							if err != nil {
								return err
							}
							end, err := parseTimeFlag(cmd, "until")
							if err != nil {
								return err
							}

							return commands.RunAuditView(ctx, auditLog, os.Stdout, auditDomain.Filter{
								Action:     auditDomain.Action(cmd.String("action")),
								EntityType: cmd.String("entity-type"),
								EntityID:   cmd.String("entity-id"),
								Start:      start,
								End:        end,
								Limit:      cmd.Int("limit"),
								Offset:     cmd.Int("offset"),
							}, cmd.String("format"))
						},
					},
					{
						Name:  "verify",
						Usage: "Verify the fingerprint of an audit log entry",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "id",
								Aliases:  []string{"i"},
								Required: true,
								Usage:    "Audit log entry ID (UUID)",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							auditLog, err := container.AuditLogUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize audit log use case: %w", err)
							}

							return commands.RunAuditVerify(ctx, auditLog, os.Stdout, cmd.String("id"), cmd.String("format"))
						},
					},
					{
						Name:  "clean",
						Usage: "Delete audit logs older than specified days",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:     "days",
								Aliases:  []string{"d"},
								Required: true,
								Usage:    "Delete audit logs older than this many days",
							},
							&cli.BoolFlag{
								Name:    "dry-run",
								Aliases: []string{"n"},
								Value:   false,
								Usage:   "Show how many logs would be deleted without deleting",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							auditLog, err := container.AuditLogUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize audit log use case: %w", err)
							}

							return commands.RunAuditClean(
								ctx,
								auditLog,
								logger,
								os.Stdout,
								cmd.Int("days"),
								cmd.Bool("dry-run"),
								cmd.String("format"),
							)
						},
					},
				},
			},
			{
				Name:  "rotate",
				Usage: "Rotate secrets and manage rotation schedules",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "Rotate due secrets in an environment, or a single secret by key",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:    "key",
								Aliases: []string{"k"},
								Usage:   "Rotate only this secret (omit to rotate all due secrets)",
							},
							&cli.StringFlag{
								Name:  "reason",
								Value: "manual",
								Usage: "Reason recorded in the rotation history",
							},
							masterPasswordFlag(),
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							cfg, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							if err := unlock(ctx, cfg, container, cmd); err != nil {
								return err
							}
							engine, err := container.RotationEngine()
							if err != nil {
								return fmt.Errorf("failed to initialize rotation engine: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							return commands.RunRotateRun(
								ctx,
								engine,
								logger,
								os.Stdout,
								cmd.String("env"),
								cmd.String("key"),
								cmd.String("reason"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "status",
						Usage: "Show secrets due for rotation",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.BoolFlag{
								Name:  "all",
								Usage: "Include rotation-enabled secrets that are not due yet",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							engine, err := container.RotationEngine()
							if err != nil {
								return fmt.Errorf("failed to initialize rotation engine: %w", err)
							}

							return commands.RunRotateStatus(
								ctx,
								engine,
								os.Stdout,
								cmd.String("env"),
								cmd.Bool("all"),
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "history",
						Usage: "Show the rotation history of a secret",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.StringFlag{
								Name:     "key",
								Aliases:  []string{"k"},
								Required: true,
								Usage:    "Variable key",
							},
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Maximum number of history entries",
							},
							formatFlag(),
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							engine, err := container.RotationEngine()
							if err != nil {
								return fmt.Errorf("failed to initialize rotation engine: %w", err)
							}

							return commands.RunRotateHistory(
								ctx,
								engine,
								os.Stdout,
								cmd.String("env"),
								cmd.String("key"),
								cmd.Int("limit"),
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "schedule",
						Usage: "Enable or disable rotation for all secrets in an environment",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "env",
								Aliases:  []string{"e"},
								Required: true,
								Usage:    "Environment name",
							},
							&cli.BoolFlag{
								Name:  "disable",
								Usage: "Disable rotation instead of enabling it",
							},
							&cli.IntFlag{
								Name:  "period-days",
								Usage: "Rotation period in days (omit to use the installation default)",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							engine, err := container.RotationEngine()
							if err != nil {
								return fmt.Errorf("failed to initialize rotation engine: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveWriteActor)
							if err != nil {
								return err
							}

							var periodDays *int
							if days := cmd.Int("period-days"); days > 0 {
								periodDays = &days
							}

							return commands.RunRotateSchedule(
								ctx,
								engine,
								logger,
								os.Stdout,
								cmd.String("env"),
								!cmd.Bool("disable"),
								periodDays,
								actor,
								cmd.String("format"),
							)
						},
					},
				},
			},
			{
				Name:  "team",
				Usage: "Manage team members",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Add a team member",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Required: true,
								Usage:    "Team member name",
							},
							&cli.StringFlag{
								Name:     "member-password",
								Required: true,
								Usage:    "Password for the new team member",
							},
							&cli.StringFlag{
								Name:    "role",
								Aliases: []string{"r"},
								Value:   "write",
								Usage:   "Role: 'read', 'write' or 'admin'",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							users, err := container.UserUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize user use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveAdminActor)
							if err != nil {
								return err
							}

							return commands.RunTeamAdd(
								ctx,
								users,
								logger,
								os.Stdout,
								cmd.String("name"),
								cmd.String("member-password"),
								cmd.String("role"),
								actor,
								cmd.String("format"),
							)
						},
					},
					{
						Name:  "list",
						Usage: "List team members",
						Flags: []cli.Flag{formatFlag()},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							users, err := container.UserUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize user use case: %w", err)
							}

							return commands.RunTeamList(ctx, users, os.Stdout, cmd.String("format"))
						},
					},
					{
						Name:  "remove",
						Usage: "Remove a team member",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Required: true,
								Usage:    "Team member name",
							},
							formatFlag(),
						}, actorFlags()...),
						Action: func(ctx context.Context, cmd *cli.Command) error {
							_, container, logger := setup()
							defer commands.CloseContainer(container, logger)

							users, err := container.UserUseCase()
							if err != nil {
								return fmt.Errorf("failed to initialize user use case: %w", err)
							}
							actor, err := resolveActor(ctx, container, cmd, commands.ResolveAdminActor)
							if err != nil {
								return err
							}

							return commands.RunTeamRemove(
								ctx,
								users,
								logger,
								os.Stdout,
								cmd.String("name"),
								actor,
								cmd.String("format"),
							)
						},
					},
				},
			},
			{
				Name:  "dashboard",
				Usage: "Show a summary of the installation",
				Flags: []cli.Flag{formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, container, logger := setup()
					defer commands.CloseContainer(container, logger)

					settings, err := container.SettingsUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize settings use case: %w", err)
					}
					environments, err := container.EnvironmentUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize environment use case: %w", err)
					}
					auditLog, err := container.AuditLogUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize audit log use case: %w", err)
					}

					return commands.RunDashboard(ctx, settings, environments, auditLog, os.Stdout, cmd.String("format"))
				},
			},
			{
				Name:  "scheduler",
				Usage: "Start the rotation scheduler daemon",
				Flags: []cli.Flag{masterPasswordFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunScheduler(ctx, cmd.String("password"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
