package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"

	callerIDKey   = "callerID"
	callerRoleKey = "callerRole"
)

// IdentityMiddleware reads the caller's identity from trusted headers
// set by the gateway. Requests without an identity are rejected before
// they reach a handler.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(userIDHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
			return
		}
		c.Set(callerIDKey, id)
		c.Set(callerRoleKey, c.GetHeader(userRoleHeader))
		c.Next()
	}
}

// CallerID returns the authenticated caller's ID.
func CallerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

// CallerRole returns the caller's declared role, or "" if absent.
func CallerRole(c *gin.Context) string {
	return c.GetString(callerRoleKey)
}
