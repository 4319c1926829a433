package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"classifieds_api/internal/auth"   // Hashing and token issuance
	"classifieds_api/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`     // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`     // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for login
type LoginResponse struct {
	Token string `json:"token"` // Opaque token identifier
}

// RegisterHandler creates a new user with the default role
func RegisterHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Hash the password; the raw password is never stored or logged
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Name: req.Name, Password: hash, Role: domain.RoleUser}
		// Attempt to create the user; the unique name constraint decides races
		if err := gdb.Create(&user).Error; err != nil {
			// Duplicate username surfaces as a conflict
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
				return
			}
			respondError(c, err, "Failed to create user")
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,   // New user ID
			"name":    user.Name, // Username
		}).Info("User registered")
		// Return the new user's id
		c.JSON(http.StatusCreated, gin.H{"id": user.ID})
	}
}

// LoginHandler authenticates a user and returns a fresh opaque token.
// Unknown name and wrong password produce the same response, so the
// error shape cannot be used to enumerate usernames.
func LoginHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := gdb.Where("name = ?", req.Name).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if !auth.VerifyPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Issue a new token; previous tokens stay valid until they expire
		token, err := auth.IssueToken(gdb, user.ID)
		if err != nil {
			respondError(c, err, "Failed to issue token")
			return
		}
		// Log successful login
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // User ID
		}).Info("User logged in")
		// Return the token identifier in the response
		c.JSON(http.StatusOK, LoginResponse{Token: token.Token})
	}
}
