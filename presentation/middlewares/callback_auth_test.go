package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealdeck/dataroom-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCallbackRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/internal/scan-callback", middlewares.CallbackAuth(token), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestCallbackAuth(t *testing.T) {
	router := newCallbackRouter("s3cret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer s3cret", http.StatusNoContent},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/scan-callback", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIdentityMiddlewareReadsGatewayHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares.IdentityMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		identity := middlewares.GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "email": identity.Email})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "u-1")
	req.Header.Set("X-User-Email", "buyer@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u-1")
	assert.Contains(t, rec.Body.String(), "buyer@example.com")
}
