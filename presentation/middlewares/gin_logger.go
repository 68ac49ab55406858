package middlewares

import (
	"time"

	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinLogger logs one line per request, annotated with the gateway
// identity when present. Health probes are not logged.
func GinLogger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if path == "/health" {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if identity := GetIdentity(c); identity.UserID != "" {
			fields = append(fields, zap.String("userId", identity.UserID))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			logger.Error("Request error", fields...)
			return
		}
		logger.Info("Request", fields...)
	}
}
