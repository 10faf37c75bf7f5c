package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	provider, err := NewProvider("vault_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})
	return provider
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("RecordsSingleRequest", func(t *testing.T) {
		provider := newTestProvider(t)
		router := gin.New()
		router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "vault_test"))
		router.GET("/secrets", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"count": 0})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secrets", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RecordsMixedMethodsAndStatuses", func(t *testing.T) {
		provider := newTestProvider(t)
		router := gin.New()
		router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "vault_test"))
		router.GET("/secrets", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"count": 0})
		})
		router.POST("/secrets", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"name": "s"})
		})
		router.GET("/boom", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
		})

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secrets", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/secrets", nil))
		assert.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("PathParamsCollapseToRoutePattern", func(t *testing.T) {
		provider := newTestProvider(t)
		router := gin.New()
		router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "vault_test"))
		router.GET("/secrets/:name", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"name": c.Param("name")})
		})

		// Both names record under /secrets/:name.
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secrets/db-password", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secrets/api-key", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/v1/secrets/:name", expected: "/v1/secrets/:name"},
		{name: "UnmatchedRoute", input: "", expected: "unknown"},
		{name: "RootPath", input: "/", expected: "/"},
		{name: "WildcardPattern", input: "/v1/secrets/*name", expected: "/v1/secrets/*name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, routeLabel(tt.input))
		})
	}
}
