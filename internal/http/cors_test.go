package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.Default()

	t.Run("DisabledReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://vault.example.com", logger))
	})

	t.Run("EnabledWithoutOriginsReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "", logger))
	})

	t.Run("CommaSeparatedOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "https://vault.example.com,https://ops.example.com", logger)
		assert.NotNil(t, middleware)
	})

	t.Run("WhitespaceAroundOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, " https://vault.example.com , https://ops.example.com ", logger)
		assert.NotNil(t, middleware)
	})
}

func TestParseOrigins(t *testing.T) {
	t.Run("CommaSeparated", func(t *testing.T) {
		origins := parseOrigins("https://vault.example.com,https://ops.example.com")
		assert.Equal(t, []string{"https://vault.example.com", "https://ops.example.com"}, origins)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		origins := parseOrigins(" https://vault.example.com , https://ops.example.com ")
		assert.Equal(t, []string{"https://vault.example.com", "https://ops.example.com"}, origins)
	})

	t.Run("EmptyString", func(t *testing.T) {
		assert.Nil(t, parseOrigins(""))
	})
}

func corsTestRouter(t *testing.T, enabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, "https://vault.example.com", slog.Default()); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/secrets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 0})
	})
	router.POST("/v1/secrets", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"name": "s"})
	})
	return router
}

func TestCORS_HeadersAddedForAllowedOrigin(t *testing.T) {
	router := corsTestRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/secrets", nil)
	req.Header.Set("Origin", "https://vault.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://vault.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoHeadersWhenDisabled(t *testing.T) {
	router := corsTestRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/secrets", nil)
	req.Header.Set("Origin", "https://vault.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightHandled(t *testing.T) {
	router := corsTestRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/secrets", nil)
	req.Header.Set("Origin", "https://vault.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://vault.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
