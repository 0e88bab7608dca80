package app

import (
	"fmt"

	"github.com/keeplegacy/docvault/internal/access"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	documentsHTTP "github.com/keeplegacy/docvault/internal/documents/http"
	docRepository "github.com/keeplegacy/docvault/internal/documents/repository"
	docUsecase "github.com/keeplegacy/docvault/internal/documents/usecase"
)

// AccessController returns the access control policy evaluator.
func (c *Container) AccessController() *access.Controller {
	c.accessControllerInit.Do(func() {
		c.accessController = access.NewController()
	})
	return c.accessController
}

// RetentionPolicy returns the document retention policy built from configuration.
func (c *Container) RetentionPolicy() *docDomain.RetentionPolicy {
	c.retentionPolicyInit.Do(func() {
		c.retentionPolicy = docDomain.NewRetentionPolicy(
			c.config.RetentionPersonalDays,
			c.config.RetentionFinancialDays,
			c.config.RetentionMedicalDays,
			c.config.RetentionLegalDays,
		)
	})
	return c.retentionPolicy
}

// DocumentRepository returns the document record repository based on database driver.
func (c *Container) DocumentRepository() (docUsecase.DocumentRepository, error) {
	var err error
	c.documentRepoInit.Do(func() {
		c.documentRepo, err = c.initDocumentRepository()
		if err != nil {
			c.initErrors["documentRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentRepo"]; exists {
		return nil, storedErr
	}
	return c.documentRepo, nil
}

// DocumentUseCase returns the document use case.
func (c *Container) DocumentUseCase() (docUsecase.DocumentUseCase, error) {
	var err error
	c.documentUseCaseInit.Do(func() {
		c.documentUseCase, err = c.initDocumentUseCase()
		if err != nil {
			c.initErrors["documentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentUseCase"]; exists {
		return nil, storedErr
	}
	return c.documentUseCase, nil
}

// DocumentHandler returns the document HTTP handler.
func (c *Container) DocumentHandler() (*documentsHTTP.DocumentHandler, error) {
	var err error
	c.documentHandlerInit.Do(func() {
		c.documentHandler, err = c.initDocumentHandler()
		if err != nil {
			c.initErrors["documentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentHandler"]; exists {
		return nil, storedErr
	}
	return c.documentHandler, nil
}

// initDocumentRepository creates the document repository based on the database driver.
func (c *Container) initDocumentRepository() (docUsecase.DocumentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for document repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return docRepository.NewPostgreSQLDocumentRepository(db), nil
	case "mysql":
		return docRepository.NewMySQLDocumentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDocumentUseCase creates the document use case with all its dependencies.
func (c *Container) initDocumentUseCase() (docUsecase.DocumentUseCase, error) {
	documentRepo, err := c.DocumentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get document repository for document use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for document use case: %w", err)
	}

	keyChain, err := c.KeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get key chain for document use case: %w", err)
	}

	objectStore, err := c.ObjectStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get object store for document use case: %w", err)
	}

	auditTrail, err := c.AuditTrailUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for document use case: %w", err)
	}

	useCase := docUsecase.NewDocumentUseCase(
		documentRepo,
		txManager,
		c.CipherEngine(),
		keyChain,
		objectStore,
		c.AccessController(),
		auditTrail,
		c.RetentionPolicy(),
		c.config.MaxUploadSizeBytes,
		c.config.AllowedContentTypes,
		c.config.ArchivePrefix,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for document use case: %w", err)
		}
		useCase = docUsecase.NewDocumentUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initDocumentHandler creates the document HTTP handler.
func (c *Container) initDocumentHandler() (*documentsHTTP.DocumentHandler, error) {
	documentUseCase, err := c.DocumentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get document use case for handler: %w", err)
	}

	return documentsHTTP.NewDocumentHandler(documentUseCase, c.Logger()), nil
}
