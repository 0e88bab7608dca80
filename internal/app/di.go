// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/keeplegacy/docvault/internal/access"
	auditHTTP "github.com/keeplegacy/docvault/internal/audit/http"
	auditService "github.com/keeplegacy/docvault/internal/audit/service"
	auditUsecase "github.com/keeplegacy/docvault/internal/audit/usecase"
	"github.com/keeplegacy/docvault/internal/config"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	cryptoService "github.com/keeplegacy/docvault/internal/crypto/service"
	cryptoUsecase "github.com/keeplegacy/docvault/internal/crypto/usecase"
	"github.com/keeplegacy/docvault/internal/database"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	documentsHTTP "github.com/keeplegacy/docvault/internal/documents/http"
	docUsecase "github.com/keeplegacy/docvault/internal/documents/usecase"
	vaultHTTP "github.com/keeplegacy/docvault/internal/http"
	"github.com/keeplegacy/docvault/internal/metrics"
	"github.com/keeplegacy/docvault/internal/storage"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	txManager   database.TxManager
	objectStore *storage.BlobStore

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	masterKeyChain *cryptoDomain.MasterKeyChain
	aeadManager    cryptoService.AEADManager
	cipherEngine   cryptoService.CipherEngine
	keySources     []cryptoService.KeySource
	keyManager     cryptoService.KeyManager
	keyRepository  cryptoUsecase.KeyRepository
	keyUseCase     cryptoUsecase.KeyUseCase
	keyChain       *cryptoDomain.KeyChain

	// Audit trail
	auditSigner       auditService.AuditSigner
	complianceClass   auditService.ComplianceClassifier
	auditLogRepo      auditUsecase.AuditLogRepository
	auditTrailUseCase auditUsecase.AuditTrailUseCase
	auditLogHandler   *auditHTTP.AuditLogHandler

	// Documents
	accessController *access.Controller
	retentionPolicy  *docDomain.RetentionPolicy
	documentRepo     docUsecase.DocumentRepository
	documentUseCase  docUsecase.DocumentUseCase
	documentHandler  *documentsHTTP.DocumentHandler

	// Servers
	httpServer    *vaultHTTP.Server
	metricsServer *vaultHTTP.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	objectStoreInit       sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	masterKeyChainInit    sync.Once
	aeadManagerInit       sync.Once
	cipherEngineInit      sync.Once
	keySourcesInit        sync.Once
	keyManagerInit        sync.Once
	keyRepositoryInit     sync.Once
	keyUseCaseInit        sync.Once
	keyChainInit          sync.Once
	auditSignerInit       sync.Once
	complianceClassInit   sync.Once
	auditLogRepoInit      sync.Once
	auditTrailUseCaseInit sync.Once
	auditLogHandlerInit   sync.Once
	accessControllerInit  sync.Once
	retentionPolicyInit   sync.Once
	documentRepoInit      sync.Once
	documentUseCaseInit   sync.Once
	documentHandlerInit   sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
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
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// ObjectStore returns the document object store client.
func (c *Container) ObjectStore() (*storage.BlobStore, error) {
	var err error
	c.objectStoreInit.Do(func() {
		c.objectStore, err = c.initObjectStore()
		if err != nil {
			c.initErrors["objectStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["objectStore"]; exists {
		return nil, storedErr
	}
	return c.objectStore, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Returns a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with all routes wired.
func (c *Container) HTTPServer() (*vaultHTTP.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server.
func (c *Container) MetricsServer() (*vaultHTTP.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush metrics if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Zero unwrapped key material
	if c.keyChain != nil {
		c.keyChain.Close()
	}
	if c.masterKeyChain != nil {
		c.masterKeyChain.Close()
	}

	// Close object store if initialized
	if c.objectStore != nil {
		if err := c.objectStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("object store close: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
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

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initObjectStore opens the configured blob bucket.
func (c *Container) initObjectStore() (*storage.BlobStore, error) {
	if c.config.BucketURL == "" {
		return nil, fmt.Errorf("BUCKET_URL is not configured")
	}

	store, err := storage.OpenBlobStore(context.Background(), c.config.BucketURL, c.config.StorageTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	return store, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*vaultHTTP.Server, error) {
	logger := c.Logger()

	documentHandler, err := c.DocumentHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get document handler for http server: %w", err)
	}

	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log handler for http server: %w", err)
	}

	routerCfg := vaultHTTP.RouterConfig{
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		MetricsNamespace:        c.config.MetricsNamespace,
	}

	var meterProvider metric.MeterProvider
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		meterProvider = provider.MeterProvider()
	}

	return vaultHTTP.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		routerCfg,
		documentHandler,
		auditLogHandler,
		meterProvider,
	), nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*vaultHTTP.MetricsServer, error) {
	logger := c.Logger()

	var provider *metrics.Provider
	if c.config.MetricsEnabled {
		var err error
		provider, err = c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
	}

	return vaultHTTP.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		logger,
		provider,
	), nil
}
