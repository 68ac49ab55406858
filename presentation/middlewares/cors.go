package middlewares

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// Defaults cover the API surface behind the gateway, including the
// identity headers it injects; config can override either list.
const (
	defaultAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	defaultAllowHeaders = "Content-Type, Content-Length, Accept, Origin, Cache-Control, X-Requested-With, X-User-ID, X-User-Email"
)

func CorsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowMethods := cfg.Cors.AllowMethods
	if allowMethods == "" {
		allowMethods = defaultAllowMethods
	}
	allowHeaders := cfg.Cors.AllowHeaders
	if allowHeaders == "" {
		allowHeaders = defaultAllowHeaders
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", cfg.Cors.AllowOrigins)
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Allow-Headers", allowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
