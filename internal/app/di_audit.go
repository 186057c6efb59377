package app

import (
	"fmt"

	auditRepository "github.com/allisson/envguard/internal/audit/repository"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
)

// AuditLogRepository returns the audit log repository based on the database driver.
func (c *Container) AuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	c.auditLogRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditLogRepo"] = fmt.Errorf("failed to get database for audit log repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.auditLogRepo = auditRepository.NewPostgreSQLAuditLogRepository(db)
		case "mysql":
			c.auditLogRepo = auditRepository.NewMySQLAuditLogRepository(db)
		default:
			c.initErrors["auditLogRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUsecase.AuditLogUseCase, error) {
	c.auditLogUseCaseInit.Do(func() {
		repo, err := c.AuditLogRepository()
		if err != nil {
			c.initErrors["auditLogUseCase"] = fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
			return
		}

		c.auditLogUseCase = auditUsecase.NewAuditLogUseCase(repo, c.Fingerprinter())
	})
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}
