package middlewares

import (
	"net/http"

	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadRateLimiter throttles presigned upload URL issuance per client
// IP. The limiter is fail-open: a broken backing store must not take
// uploads down with it.
func UploadRateLimiter(limiter ratelimit.Limiter, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), "upload:"+clientIP)
		if err != nil {
			logger.Error("rate limit check failed", zap.Error(err), zap.String("ip", clientIP))
			c.Next()
			return
		}

		if !allowed {
			logger.Warn("upload rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "too many upload requests, slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
