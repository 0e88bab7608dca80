package app

import (
	"fmt"

	auditHTTP "github.com/keeplegacy/docvault/internal/audit/http"
	auditRepository "github.com/keeplegacy/docvault/internal/audit/repository"
	auditService "github.com/keeplegacy/docvault/internal/audit/service"
	auditUsecase "github.com/keeplegacy/docvault/internal/audit/usecase"
)

// AuditSigner returns the audit entry signing service.
func (c *Container) AuditSigner() auditService.AuditSigner {
	c.auditSignerInit.Do(func() {
		c.auditSigner = auditService.NewAuditSigner()
	})
	return c.auditSigner
}

// ComplianceClassifier returns the compliance classification service.
func (c *Container) ComplianceClassifier() auditService.ComplianceClassifier {
	c.complianceClassInit.Do(func() {
		c.complianceClass = auditService.NewComplianceClassifier()
	})
	return c.complianceClass
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// AuditTrailUseCase returns the audit trail use case.
func (c *Container) AuditTrailUseCase() (auditUsecase.AuditTrailUseCase, error) {
	var err error
	c.auditTrailUseCaseInit.Do(func() {
		c.auditTrailUseCase, err = c.initAuditTrailUseCase()
		if err != nil {
			c.initErrors["auditTrailUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditTrailUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditTrailUseCase, nil
}

// AuditLogHandler returns the audit log HTTP handler.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initAuditLogRepository creates the audit log repository based on the database driver.
func (c *Container) initAuditLogRepository() (auditUsecase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditTrailUseCase creates the audit trail use case with all its dependencies.
func (c *Container) initAuditTrailUseCase() (auditUsecase.AuditTrailUseCase, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit trail: %w", err)
	}

	keyChain, err := c.KeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get key chain for audit trail: %w", err)
	}

	useCase := auditUsecase.NewAuditTrailUseCase(
		auditLogRepo,
		c.AuditSigner(),
		c.ComplianceClassifier(),
		keyChain,
		c.config.AuditRetentionDays,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit trail: %w", err)
		}
		useCase = auditUsecase.NewAuditTrailUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initAuditLogHandler creates the audit log HTTP handler.
func (c *Container) initAuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	auditTrailUseCase, err := c.AuditTrailUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail use case for handler: %w", err)
	}

	return auditHTTP.NewAuditLogHandler(auditTrailUseCase, c.Logger()), nil
}
