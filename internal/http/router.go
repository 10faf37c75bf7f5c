package http

import (
	"log/slog"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
)

// RouteRegistrar attaches a handler's routes to the authenticated /v1 group.
type RouteRegistrar interface {
	Register(v1 *gin.RouterGroup)
}

// RouterConfig holds the settings needed to assemble the API router.
type RouterConfig struct {
	APITokenHash     string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSEnabled      bool
	CORSAllowOrigins string

	// MetricsMiddleware records per-request HTTP metrics when set.
	MetricsMiddleware gin.HandlerFunc
}

// NewRouter assembles the gin engine: recovery, request id, logging and CORS
// on every route, health endpoints public, and the /v1 API group behind
// bearer-token authentication and rate limiting.
func NewRouter(
	cfg RouterConfig,
	tokenHasher cryptoService.TokenHasher,
	logger *slog.Logger,
	registrars ...RouteRegistrar,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(AuthenticationMiddleware(tokenHasher, cfg.APITokenHash, logger))
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	for _, registrar := range registrars {
		registrar.Register(v1)
	}

	return router
}
