package app

import (
	"fmt"

	rotationRepository "github.com/allisson/envguard/internal/rotation/repository"
	"github.com/allisson/envguard/internal/rotation/scheduler"
	rotationUsecase "github.com/allisson/envguard/internal/rotation/usecase"
)

// RotationHistoryRepository returns the rotation history repository based on the database driver.
func (c *Container) RotationHistoryRepository() (rotationUsecase.HistoryRepository, error) {
	c.historyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["historyRepo"] = fmt.Errorf("failed to get database for rotation history repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.historyRepo = rotationRepository.NewPostgreSQLRotationHistoryRepository(db)
		case "mysql":
			c.historyRepo = rotationRepository.NewMySQLRotationHistoryRepository(db)
		default:
			c.initErrors["historyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["historyRepo"]; exists {
		return nil, storedErr
	}
	return c.historyRepo, nil
}

// RotationEngine returns the rotation engine, wrapped with metrics when enabled.
func (c *Container) RotationEngine() (rotationUsecase.Engine, error) {
	c.rotationEngineInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get tx manager for rotation engine: %w", err)
			return
		}

		varRepo, err := c.VariableRepository()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get variable repository for rotation engine: %w", err)
			return
		}

		historyRepo, err := c.RotationHistoryRepository()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get rotation history repository for rotation engine: %w", err)
			return
		}

		envRepo, err := c.EnvironmentRepository()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get environment repository for rotation engine: %w", err)
			return
		}

		settingsRepo, err := c.SettingsRepository()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get settings repository for rotation engine: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["rotationEngine"] = fmt.Errorf("failed to get audit log use case for rotation engine: %w", err)
			return
		}

		engine := rotationUsecase.NewRotationEngine(
			txManager,
			varRepo,
			historyRepo,
			envRepo,
			settingsRepo,
			c.MasterKeySession(),
			c.Envelope(),
			c.SecretGenerator(),
			c.Fingerprinter(),
			auditLog,
			c.config.RotationBatchPerSec,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				c.initErrors["rotationEngine"] = fmt.Errorf("failed to get business metrics for rotation engine: %w", err)
				return
			}
			c.rotationEngine = rotationUsecase.NewEngineWithMetrics(engine, businessMetrics)
			return
		}

		c.rotationEngine = engine
	})
	if storedErr, exists := c.initErrors["rotationEngine"]; exists {
		return nil, storedErr
	}
	return c.rotationEngine, nil
}

// RotationScheduler returns the rotation scheduler daemon.
func (c *Container) RotationScheduler() (*scheduler.Scheduler, error) {
	c.rotationSchedulerInit.Do(func() {
		engine, err := c.RotationEngine()
		if err != nil {
			c.initErrors["rotationScheduler"] = fmt.Errorf("failed to get rotation engine for scheduler: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["rotationScheduler"] = fmt.Errorf("failed to get audit log use case for scheduler: %w", err)
			return
		}

		envRepo, err := c.EnvironmentRepository()
		if err != nil {
			c.initErrors["rotationScheduler"] = fmt.Errorf("failed to get environment repository for scheduler: %w", err)
			return
		}

		cfg := scheduler.Config{
			CronSpec:      c.config.SchedulerCronSpec,
			RetentionDays: c.config.AuditRetentionDays,
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["rotationScheduler"] = fmt.Errorf("failed to get metrics provider for scheduler: %w", err)
			return
		}
		if provider != nil {
			cfg.MetricsAddr = fmt.Sprintf(":%d", c.config.MetricsPort)
			cfg.MetricsHandler = provider.Handler()
		}

		c.rotationScheduler = scheduler.New(engine, auditLog, envRepo, c.Logger(), cfg)
	})
	if storedErr, exists := c.initErrors["rotationScheduler"]; exists {
		return nil, storedErr
	}
	return c.rotationScheduler, nil
}
