package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CallbackAuth guards machine-to-machine callback routes with a shared
// bearer token. Comparison is constant time.
func CallbackAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "invalid callback token",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
