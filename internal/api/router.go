package api

import (
	"time" // Token TTL

	"classifieds_api/internal/middleware" // Token auth middleware

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// NewRouter assembles the gin engine with all routes. Reads are open;
// every mutating route behind the token middleware.
func NewRouter(gdb *gorm.DB, tokenTTL time.Duration) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Shared token-auth middleware for protected routes
	authRequired := middleware.TokenAuthMiddleware(gdb, tokenTTL)

	// User routes
	r.POST("/user", RegisterHandler(gdb))                       // Registration endpoint
	r.GET("/user/:id", GetUserHandler(gdb))                     // Fetch user endpoint
	r.PATCH("/user/:id", authRequired, UpdateUserHandler(gdb))  // Update user endpoint
	r.DELETE("/user/:id", authRequired, DeleteUserHandler(gdb)) // Delete user endpoint

	// Login route
	r.POST("/login", LoginHandler(gdb)) // Login endpoint

	// Advertisement routes
	ads := r.Group("/advertisement")
	ads.GET("", SearchAdsHandler(gdb))  // Search endpoint
	ads.GET("/:id", GetAdHandler(gdb))  // Fetch endpoint
	// Mutations require a valid token
	protected := ads.Group("", authRequired)
	protected.POST("", CreateAdHandler(gdb))        // Create endpoint
	protected.PATCH("/:id", UpdateAdHandler(gdb))   // Update endpoint
	protected.DELETE("/:id", DeleteAdHandler(gdb))  // Delete endpoint

	return r
}
