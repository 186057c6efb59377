package app

import (
	"fmt"

	environmentsRepository "github.com/allisson/envguard/internal/environments/repository"
	environmentsUsecase "github.com/allisson/envguard/internal/environments/usecase"
)

// EnvironmentRepository returns the environment repository based on the database driver.
func (c *Container) EnvironmentRepository() (environmentsUsecase.EnvironmentRepository, error) {
	c.environmentRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["environmentRepo"] = fmt.Errorf("failed to get database for environment repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.environmentRepo = environmentsRepository.NewPostgreSQLEnvironmentRepository(db)
		case "mysql":
			c.environmentRepo = environmentsRepository.NewMySQLEnvironmentRepository(db)
		default:
			c.initErrors["environmentRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["environmentRepo"]; exists {
		return nil, storedErr
	}
	return c.environmentRepo, nil
}

// EnvironmentUseCase returns the environment use case.
func (c *Container) EnvironmentUseCase() (environmentsUsecase.UseCase, error) {
	c.environmentUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["environmentUseCase"] = fmt.Errorf("failed to get tx manager for environment use case: %w", err)
			return
		}

		repo, err := c.EnvironmentRepository()
		if err != nil {
			c.initErrors["environmentUseCase"] = fmt.Errorf("failed to get environment repository for environment use case: %w", err)
			return
		}

		varRepo, err := c.VariableRepository()
		if err != nil {
			c.initErrors["environmentUseCase"] = fmt.Errorf("failed to get variable repository for environment use case: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["environmentUseCase"] = fmt.Errorf("failed to get audit log use case for environment use case: %w", err)
			return
		}

		c.environmentUseCase = environmentsUsecase.NewEnvironmentUseCase(txManager, repo, varRepo, auditLog)
	})
	if storedErr, exists := c.initErrors["environmentUseCase"]; exists {
		return nil, storedErr
	}
	return c.environmentUseCase, nil
}
