package middlewares

import (
	"strings"

	"github.com/dealdeck/dataroom-api/domain/model"
	"github.com/gin-gonic/gin"
)

const IdentityContextKey = "identity"

// IdentityMiddleware extracts the caller's identity from the headers the
// upstream gateway injects after session validation. The service trusts
// these headers; it is never exposed directly to the public internet.
// Requests without either header proceed anonymous and fail later at the
// access engine, not here, so public health and metrics routes stay open.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := model.Identity{
			UserID: strings.TrimSpace(c.GetHeader("X-User-ID")),
			Email:  strings.TrimSpace(c.GetHeader("X-User-Email")),
		}
		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// GetIdentity returns the caller identity set by IdentityMiddleware. A
// missing value means the middleware did not run; callers treat that as
// anonymous.
func GetIdentity(c *gin.Context) model.Identity {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return model.Identity{}
	}
	identity, ok := value.(model.Identity)
	if !ok {
		return model.Identity{}
	}
	return identity
}
