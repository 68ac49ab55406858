package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCorsRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares.CorsMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCorsPreflightShortCircuits(t *testing.T) {
	cfg := &config.Config{Cors: config.CorsConfig{AllowOrigins: "https://dealdeck.io"}}
	router := newCorsRouter(cfg)

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dealdeck.io", rec.Header().Get("Access-Control-Allow-Origin"))
	// The gateway identity headers must be preflight-allowed or the
	// browser strips them from the real request.
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-Email")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCorsConfigOverridesDefaults(t *testing.T) {
	cfg := &config.Config{Cors: config.CorsConfig{
		AllowOrigins: "http://localhost:3000",
		AllowMethods: "GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}}
	router := newCorsRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}
