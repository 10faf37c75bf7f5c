package app

import (
	"fmt"

	accessHTTP "github.com/keywell/vault/internal/access/http"
	"github.com/keywell/vault/internal/http"
	"github.com/keywell/vault/internal/metrics"
	rotationHTTP "github.com/keywell/vault/internal/rotation/http"
	vaultHTTP "github.com/keywell/vault/internal/vault/http"
)

// HTTPServer returns the API server with all routes registered.
func (c *Container) HTTPServer() (*http.Server, error) {
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

// MetricsServer returns the standalone Prometheus metrics server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
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

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	vaultUC, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for http server: %w", err)
	}

	accessUC, err := c.AccessUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get access use case for http server: %w", err)
	}

	schedulerUC, err := c.SchedulerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduler use case for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		APITokenHash:     c.config.APITokenHash,
		RateLimitEnabled: c.config.RateLimitEnabled,
		RateLimitRPS:     c.config.RateLimitRequestsPerSec,
		RateLimitBurst:   c.config.RateLimitBurst,
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
	}

	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.MetricsMiddleware = metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	router := http.NewRouter(
		routerConfig,
		c.TokenHasher(),
		logger,
		vaultHTTP.NewSecretHandler(vaultUC, logger),
		accessHTTP.NewPolicyHandler(accessUC, logger),
		rotationHTTP.NewRotationHandler(schedulerUC, logger),
	)

	return http.NewServer(c.config.ServerHost, c.config.ServerPort, router, logger), nil
}

// initMetricsServer creates the metrics server exposing the Prometheus endpoint.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, fmt.Errorf("metrics are disabled")
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
