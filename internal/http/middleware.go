package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// CustomLoggerMiddleware logs HTTP requests with the request id using slog.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		)
	}
}

// healthHandler reports process liveness.
func healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness. It returns 503 once the server context
// is cancelled so load balancers drain traffic during shutdown.
func readinessHandler(c *gin.Context) {
	select {
	case <-c.Request.Context().Done():
		c.JSON(503, gin.H{"status": "not ready"})
	default:
		c.JSON(200, gin.H{"status": "ready"})
	}
}
