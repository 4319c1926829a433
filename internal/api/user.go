package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"classifieds_api/internal/auth"       // Access decisions and hashing
	"classifieds_api/internal/domain"     // Importing domain models
	"classifieds_api/internal/middleware" // Context key for the resolved user

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for partial user updates; nil fields are left unchanged
type UpdateUserRequest struct {
	Name     *string `json:"name"`     // New username, optional
	Password *string `json:"password"` // New raw password, optional
	Role     *string `json:"role"`     // New role, optional, admin only
}

// currentUser extracts the user resolved by the token middleware
func currentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(middleware.CurrentUserKey) // Get resolved user from context
	if !exists {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// pathID parses the numeric :id path parameter
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// GetUserHandler returns a user's public fields; no token required
func GetUserHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c) // Parse user id from path
		if !ok {
			// If id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		var user domain.User // Fetch user from database
		if err := gdb.First(&user, id).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user) // Password hash is excluded by the json tag
	}
}

// UpdateUserHandler merges supplied fields onto an existing user.
// Authorize-then-mutate runs in one transaction so a concurrent change
// cannot slip between the permission check and the write.
func UpdateUserHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := currentUser(c) // Get acting user from context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c) // Parse target user id from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// An unrecognized role value is rejected for any actor
		var newRole domain.Role
		if req.Role != nil {
			parsed, err := domain.ParseRole(*req.Role)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid role"})
				return
			}
			newRole = parsed
		}
		// Hash a new password up front to keep bcrypt out of the transaction
		var newHash string
		if req.Password != nil {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			newHash = hash
		}
		var user domain.User // Target user
		// Atomic read-check-write
		err := gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&user, id).Error; err != nil {
				return errNotFound("User not found") // Target does not exist
			}
			// Only self or admin may touch the row
			if !auth.CanModifyUser(actor, user.ID) {
				return errForbidden("Insufficient permissions")
			}
			if req.Role != nil {
				// A non-admin asking for a different role is an invalid write,
				// never a silent no-op
				if newRole != user.Role && !auth.CanSetRole(actor) {
					return errInvalidInput("Only admin can set role")
				}
				user.Role = newRole // Apply role
			}
			if req.Name != nil {
				user.Name = *req.Name // Apply new name
			}
			if req.Password != nil {
				user.Password = newHash // Apply re-hashed password
			}
			// Persist the merged row
			if err := tx.Save(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errConflict("Update failed") // Name collided with another user
				}
				return err // Rollback on storage error
			}
			return nil // Commit transaction
		})
		if err != nil {
			respondError(c, err, "Failed to update user")
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"actor_id": actor.ID, // Acting user ID
			"user_id":  user.ID,  // Updated user ID
		}).Info("User updated")
		c.JSON(http.StatusOK, user) // Return updated public fields
	}
}

// DeleteUserHandler deletes a user together with owned tokens and ads
func DeleteUserHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := currentUser(c) // Get acting user from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c) // Parse target user id from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		// Atomic check-then-delete; the cascade is part of the same transaction
		err := gdb.Transaction(func(tx *gorm.DB) error {
			var user domain.User // Target user
			if err := tx.First(&user, id).Error; err != nil {
				return errNotFound("User not found")
			}
			if !auth.CanModifyUser(actor, user.ID) {
				return errForbidden("Insufficient permissions")
			}
			// Cascade to owned tokens
			if err := tx.Where("user_id = ?", user.ID).Delete(&domain.Token{}).Error; err != nil {
				return err // Rollback on storage error
			}
			// Cascade to owned advertisements
			if err := tx.Where("author_id = ?", user.ID).Delete(&domain.Advertisement{}).Error; err != nil {
				return err // Rollback on storage error
			}
			// Delete the user row itself
			if err := tx.Delete(&user).Error; err != nil {
				return err // Rollback on storage error
			}
			return nil // Commit transaction
		})
		if err != nil {
			respondError(c, err, "Failed to delete user")
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"actor_id": actor.ID, // Acting user ID
			"user_id":  id,       // Deleted user ID
		}).Info("User deleted")
		c.JSON(http.StatusOK, gin.H{"deleted_user_id": id})
	}
}
