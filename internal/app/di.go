// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	gocloudsecrets "gocloud.dev/secrets"

	accessService "github.com/keywell/vault/internal/access/service"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
	"github.com/keywell/vault/internal/config"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
	"github.com/keywell/vault/internal/database"
	"github.com/keywell/vault/internal/http"
	"github.com/keywell/vault/internal/metrics"
	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
	"github.com/keywell/vault/internal/vault/cache"
	vaultUseCase "github.com/keywell/vault/internal/vault/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	keeper          *gocloudsecrets.Keeper
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers and services
	txManager      database.TxManager
	tokenHasher    cryptoService.TokenHasher
	materialStore  cryptoService.KeyMaterialStore
	patternMatcher accessService.PatternMatcher

	// Repositories
	keyRepo      cryptoUseCase.KeyRepository
	materialRepo cryptoService.MaterialRepository
	secretRepo   vaultUseCase.SecretRepository
	versionRepo  vaultUseCase.SecretVersionRepository
	policyRepo   accessUseCase.PolicyRepository
	accessLRepo  accessUseCase.AccessLogRepository
	scheduleRepo rotationUseCase.ScheduleRepository

	// Use cases
	keyUseCase       cryptoUseCase.KeyUseCase
	vaultUseCase     vaultUseCase.VaultUseCase
	accessUseCase    accessUseCase.AccessUseCase
	schedulerUseCase rotationUseCase.SchedulerUseCase

	// Caches, servers and workers
	secretCache   *cache.SecretCache
	keyMonitor    *cryptoUseCase.KeyMonitor
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	dbInit               sync.Once
	keeperInit           sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	txManagerInit        sync.Once
	tokenHasherInit      sync.Once
	materialStoreInit    sync.Once
	patternMatcherInit   sync.Once
	keyRepoInit          sync.Once
	materialRepoInit     sync.Once
	secretRepoInit       sync.Once
	versionRepoInit      sync.Once
	policyRepoInit       sync.Once
	accessLRepoInit      sync.Once
	scheduleRepoInit     sync.Once
	keyUseCaseInit       sync.Once
	vaultUseCaseInit     sync.Once
	accessUseCaseInit    sync.Once
	schedulerUseCaseInit sync.Once
	secretCacheInit      sync.Once
	keyMonitorInit       sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
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

// Keeper returns the gocloud.dev secrets keeper used to wrap key material.
func (c *Container) Keeper() (*gocloudsecrets.Keeper, error) {
	var err error
	c.keeperInit.Do(func() {
		c.keeper, err = c.initKeeper()
		if err != nil {
			c.initErrors["keeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// MetricsProvider returns the Prometheus-backed OpenTelemetry metrics provider.
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

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled in the configuration a no-op recorder is returned.
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

// TokenHasher returns the argon2id token hasher used to verify the operator
// API token.
func (c *Container) TokenHasher() cryptoService.TokenHasher {
	c.tokenHasherInit.Do(func() {
		c.tokenHasher = cryptoService.NewTokenHasher()
	})
	return c.tokenHasher
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server and provider if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close the keeper if initialized
	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("keeper close: %w", err))
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

// initKeeper opens the keeper from the configured URI.
func (c *Container) initKeeper() (*gocloudsecrets.Keeper, error) {
	if c.config.KeeperURI == "" {
		return nil, fmt.Errorf("keeper URI is not configured")
	}
	keeper, err := cryptoService.OpenKeeper(context.Background(), c.config.KeeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
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
