package app

import (
	"fmt"

	settingsRepository "github.com/allisson/envguard/internal/settings/repository"
	settingsUsecase "github.com/allisson/envguard/internal/settings/usecase"
)

// SettingsRepository returns the settings repository based on the database driver.
func (c *Container) SettingsRepository() (settingsUsecase.SettingsRepository, error) {
	c.settingsRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["settingsRepo"] = fmt.Errorf("failed to get database for settings repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.settingsRepo = settingsRepository.NewPostgreSQLSettingsRepository(db)
		case "mysql":
			c.settingsRepo = settingsRepository.NewMySQLSettingsRepository(db)
		default:
			c.initErrors["settingsRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["settingsRepo"]; exists {
		return nil, storedErr
	}
	return c.settingsRepo, nil
}

// SettingsUseCase returns the settings use case.
func (c *Container) SettingsUseCase() (settingsUsecase.UseCase, error) {
	c.settingsUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["settingsUseCase"] = fmt.Errorf("failed to get tx manager for settings use case: %w", err)
			return
		}

		repo, err := c.SettingsRepository()
		if err != nil {
			c.initErrors["settingsUseCase"] = fmt.Errorf("failed to get settings repository for settings use case: %w", err)
			return
		}

		envRepo, err := c.EnvironmentRepository()
		if err != nil {
			c.initErrors["settingsUseCase"] = fmt.Errorf("failed to get environment repository for settings use case: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["settingsUseCase"] = fmt.Errorf("failed to get audit log use case for settings use case: %w", err)
			return
		}

		c.settingsUseCase = settingsUsecase.NewSettingsUseCase(
			txManager,
			repo,
			envRepo,
			c.PasswordHasher(),
			c.KeyDeriver(),
			c.MasterKeySession(),
			auditLog,
		)
	})
	if storedErr, exists := c.initErrors["settingsUseCase"]; exists {
		return nil, storedErr
	}
	return c.settingsUseCase, nil
}
