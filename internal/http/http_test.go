package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
)

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{}, cryptoService.NewTokenHasher(), slog.Default())

	for _, path := range []string{"/health", "/ready"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code, path)
	}
}

func TestAuthenticationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokenHasher := cryptoService.NewTokenHasher()
	const plainToken = "test-operator-token"
	tokenHash, err := tokenHasher.HashToken(plainToken)
	require.NoError(t, err)

	newRouter := func(hash string) *gin.Engine {
		router := gin.New()
		router.Use(AuthenticationMiddleware(tokenHasher, hash, slog.Default()))
		router.GET("/protected", func(c *gin.Context) {
			actor, _ := GetActor(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{
				"user_id": actor.UserID,
				"service": actor.Service,
				"roles":   actor.Roles,
			})
		})
		return router
	}

	t.Run("valid token with actor headers", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+plainToken)
		req.Header.Set("X-Actor-Id", "u1")
		req.Header.Set("X-Actor-Roles", "admin, operator")
		newRouter(tokenHash).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"user_id":"u1"`)
		assert.Contains(t, recorder.Body.String(), `"operator"`)
	})

	t.Run("case insensitive bearer prefix", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "bearer "+plainToken)
		newRouter(tokenHash).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		newRouter(tokenHash).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer wrong-token")
		newRouter(tokenHash).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("no configured hash fails closed", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+plainToken)
		newRouter("").ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimitMiddleware(1, 2, slog.Default()))
	router.GET("/limited", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("burst allowed then limited", func(t *testing.T) {
		statuses := make([]int, 0, 3)
		for range 3 {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/limited", nil)
			router.ServeHTTP(recorder, req)
			statuses = append(statuses, recorder.Code)
		}

		assert.Equal(t, http.StatusOK, statuses[0])
		assert.Equal(t, http.StatusOK, statuses[1])
		assert.Equal(t, http.StatusTooManyRequests, statuses[2])
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CustomLoggerMiddleware(slog.Default()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}
