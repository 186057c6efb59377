package app

import (
	"fmt"

	variablesRepository "github.com/allisson/envguard/internal/variables/repository"
	variablesUsecase "github.com/allisson/envguard/internal/variables/usecase"
)

// VariableRepository returns the variable repository based on the database driver.
func (c *Container) VariableRepository() (VariableRepository, error) {
	c.variableRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["variableRepo"] = fmt.Errorf("failed to get database for variable repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.variableRepo = variablesRepository.NewPostgreSQLVariableRepository(db)
		case "mysql":
			c.variableRepo = variablesRepository.NewMySQLVariableRepository(db)
		default:
			c.initErrors["variableRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["variableRepo"]; exists {
		return nil, storedErr
	}
	return c.variableRepo, nil
}

// SecretStore returns the variable store use case, wrapped with metrics when enabled.
func (c *Container) SecretStore() (variablesUsecase.SecretStore, error) {
	c.secretStoreInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["secretStore"] = fmt.Errorf("failed to get tx manager for secret store: %w", err)
			return
		}

		varRepo, err := c.VariableRepository()
		if err != nil {
			c.initErrors["secretStore"] = fmt.Errorf("failed to get variable repository for secret store: %w", err)
			return
		}

		envRepo, err := c.EnvironmentRepository()
		if err != nil {
			c.initErrors["secretStore"] = fmt.Errorf("failed to get environment repository for secret store: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["secretStore"] = fmt.Errorf("failed to get audit log use case for secret store: %w", err)
			return
		}

		store := variablesUsecase.NewSecretStoreUseCase(
			txManager,
			varRepo,
			envRepo,
			c.MasterKeySession(),
			c.Envelope(),
			c.Fingerprinter(),
			auditLog,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				c.initErrors["secretStore"] = fmt.Errorf("failed to get business metrics for secret store: %w", err)
				return
			}
			c.secretStore = variablesUsecase.NewSecretStoreWithMetrics(store, businessMetrics)
			return
		}

		c.secretStore = store
	})
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}
