package app

import (
	"fmt"

	usersRepository "github.com/allisson/envguard/internal/users/repository"
	usersUsecase "github.com/allisson/envguard/internal/users/usecase"
)

// UserRepository returns the user repository based on the database driver.
func (c *Container) UserRepository() (usersUsecase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.userRepo = usersRepository.NewPostgreSQLUserRepository(db)
		case "mysql":
			c.userRepo = usersRepository.NewMySQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (usersUsecase.UseCase, error) {
	c.userUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get tx manager for user use case: %w", err)
			return
		}

		repo, err := c.UserRepository()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get user repository for user use case: %w", err)
			return
		}

		auditLog, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get audit log use case for user use case: %w", err)
			return
		}

		c.userUseCase = usersUsecase.NewUserUseCase(txManager, repo, c.PasswordHasher(), auditLog)
	})
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}
