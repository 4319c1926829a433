package middleware

import (
	"net/http" // HTTP status codes
	"time"     // Token TTL

	"classifieds_api/internal/auth" // Token resolution

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CurrentUserKey is the gin context key holding the resolved *domain.User
const CurrentUserKey = "currentUser"

// TokenAuthMiddleware validates the X-Token header and stores the
// resolved user (including role) in the request context
func TokenAuthMiddleware(gdb *gorm.DB, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Token") // Get token header
		// Check if the token header is present
		if raw == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		// Resolve the token against the database
		user, err := auth.ResolveToken(gdb, raw, time.Now(), ttl)
		if err != nil {
			// Malformed, unknown, or expired token
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(CurrentUserKey, user) // Store resolved user in context
		c.Next()                    // Proceed to the next handler
	}
}
