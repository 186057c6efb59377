// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditService "github.com/allisson/envguard/internal/audit/service"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	"github.com/allisson/envguard/internal/config"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	"github.com/allisson/envguard/internal/database"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
	"github.com/allisson/envguard/internal/metrics"
	"github.com/allisson/envguard/internal/rotation/scheduler"
	rotationUsecase "github.com/allisson/envguard/internal/rotation/usecase"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
	variablesUsecase "github.com/allisson/envguard/internal/variables/usecase"
)

// VariableRepository is the union of the variable persistence surface the
// secret store and the rotation engine need. Both driver implementations
// satisfy it.
type VariableRepository interface {
	variablesUsecase.VariableRepository
	rotationUsecase.VariableRepository
}

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	session         *cryptoDomain.MasterKeySession
	envelope        cryptoService.Envelope
	keyDeriver      cryptoService.KeyDeriver
	passwordHasher  cryptoService.PasswordHasher
	secretGenerator cryptoService.SecretGenerator
	fingerprinter   auditService.Fingerprinter

	// Repositories
	auditLogRepo    auditUsecase.AuditLogRepository
	environmentRepo environmentsUsecase.EnvironmentRepository
	variableRepo    VariableRepository
	historyRepo     rotationUsecase.HistoryRepository
	settingsRepo    settingsUsecase.SettingsRepository
	userRepo        usersUsecase.UserRepository

	// Use Cases
	auditLogUseCase    auditUsecase.AuditLogUseCase
	environmentUseCase environmentsUsecase.UseCase
	secretStore        variablesUsecase.SecretStore
	rotationEngine     rotationUsecase.Engine
	settingsUseCase    settingsUsecase.UseCase
	userUseCase        usersUsecase.UseCase

	// Workers
	rotationScheduler *scheduler.Scheduler

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	sessionInit            sync.Once
	envelopeInit           sync.Once
	keyDeriverInit         sync.Once
	passwordHasherInit     sync.Once
	secretGeneratorInit    sync.Once
	fingerprinterInit      sync.Once
	auditLogRepoInit       sync.Once
	environmentRepoInit    sync.Once
	variableRepoInit       sync.Once
	historyRepoInit        sync.Once
	settingsRepoInit       sync.Once
	userRepoInit           sync.Once
	auditLogUseCaseInit    sync.Once
	environmentUseCaseInit sync.Once
	secretStoreInit        sync.Once
	rotationEngineInit     sync.Once
	settingsUseCaseInit    sync.Once
	userUseCaseInit        sync.Once
	rotationSchedulerInit  sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled it returns a no-op implementation so callers never branch.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Clear key material before anything else
	if c.session != nil {
		c.session.Clear()
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if c.config.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
