package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"classifieds_api/internal/auth"   // Access decisions
	"classifieds_api/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for creating an advertisement; the author is always
// the token's user, a body-supplied author would bypass ownership
type CreateAdRequest struct {
	Title       string  `json:"title" binding:"required"`       // Listing title
	Description string  `json:"description" binding:"required"` // Listing description
	Price       float64 `json:"price"`                          // Price, validated > 0 below
}

// Request struct for partial advertisement updates
type UpdateAdRequest struct {
	Title       *string  `json:"title"`       // New title, optional
	Description *string  `json:"description"` // New description, optional
	Price       *float64 `json:"price"`       // New price, optional, must stay > 0
}

// CreateAdHandler creates an advertisement authored by the token's user
func CreateAdHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := currentUser(c) // Get acting user from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateAdRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Price must be strictly positive
		if req.Price <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Price must be positive"})
			return
		}
		ad := domain.Advertisement{
			Title:       req.Title,       // Listing title
			Description: req.Description, // Listing description
			Price:       req.Price,       // Validated price
			AuthorID:    actor.ID,        // Author comes from the token
		}
		// Persist the advertisement
		if err := gdb.Create(&ad).Error; err != nil {
			respondError(c, err, "Failed to create advertisement")
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"ad_id":     ad.ID,    // New advertisement ID
			"author_id": actor.ID, // Author user ID
		}).Info("Advertisement created")
		c.JSON(http.StatusCreated, ad) // Return the created listing
	}
}

// GetAdHandler returns a single advertisement; no token required
func GetAdHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c) // Parse advertisement id from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid advertisement id"})
			return
		}
		var ad domain.Advertisement // Fetch advertisement from database
		if err := gdb.First(&ad, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Advertisement not found"})
			return
		}
		c.JSON(http.StatusOK, ad) // Return the listing
	}
}

// SearchAdsHandler filters advertisements by optional conjunctive
// criteria and pages the result; no token required
func SearchAdsHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := gdb.Model(&domain.Advertisement{}) // Start building the query
		// Case-insensitive substring match on title
		if title := c.Query("title"); title != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
		}
		// Case-insensitive substring match on description
		if desc := c.Query("description"); desc != "" {
			query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(desc)+"%")
		}
		// Exact author match
		if v := c.Query("author_id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				query = query.Where("author_id = ?", id)
			}
		}
		// Exact price match
		if v := c.Query("price"); v != "" {
			if p, err := strconv.ParseFloat(v, 64); err == nil {
				query = query.Where("price = ?", p)
			}
		}
		limit := 100 // Default page size
		offset := 0  // Default skip count
		// Invalid pagination values fall back to the defaults
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n // Set limit if valid
			}
		}
		// Offset is a true skip count, independent of limit
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n // Set offset if valid
			}
		}
		var ads []domain.Advertisement // Slice to hold results
		// Paging applies whether or not any filter was given
		if err := query.Order("id").Limit(limit).Offset(offset).Find(&ads).Error; err != nil {
			respondError(c, err, "Failed to search advertisements")
			return
		}
		c.JSON(http.StatusOK, ads) // Return the result page
	}
}

// UpdateAdHandler merges supplied fields onto an existing advertisement
func UpdateAdHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := currentUser(c) // Get acting user from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c) // Parse advertisement id from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid advertisement id"})
			return
		}
		var req UpdateAdRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Price is validated before any merge attempt, so a rejected
		// update leaves the stored price untouched
		if req.Price != nil && *req.Price <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Price must be positive"})
			return
		}
		var ad domain.Advertisement // Target advertisement
		// Atomic read-check-write
		err := gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&ad, id).Error; err != nil {
				return errNotFound("Advertisement not found")
			}
			// Only the author or an admin may touch the row
			if !auth.CanModifyAd(actor, &ad) {
				return errForbidden("Insufficient permissions")
			}
			if req.Title != nil {
				ad.Title = *req.Title // Apply new title
			}
			if req.Description != nil {
				ad.Description = *req.Description // Apply new description
			}
			if req.Price != nil {
				ad.Price = *req.Price // Apply validated price
			}
			// Persist the merged row
			if err := tx.Save(&ad).Error; err != nil {
				return err // Rollback on storage error
			}
			return nil // Commit transaction
		})
		if err != nil {
			respondError(c, err, "Failed to update advertisement")
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"actor_id": actor.ID, // Acting user ID
			"ad_id":    ad.ID,    // Updated advertisement ID
		}).Info("Advertisement updated")
		c.JSON(http.StatusOK, ad) // Return the updated listing
	}
}

// DeleteAdHandler deletes an advertisement
func DeleteAdHandler(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := currentUser(c) // Get acting user from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := pathID(c) // Parse advertisement id from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid advertisement id"})
			return
		}
		// Atomic check-then-delete
		err := gdb.Transaction(func(tx *gorm.DB) error {
			var ad domain.Advertisement // Target advertisement
			if err := tx.First(&ad, id).Error; err != nil {
				return errNotFound("Advertisement not found")
			}
			if !auth.CanModifyAd(actor, &ad) {
				return errForbidden("Insufficient permissions")
			}
			if err := tx.Delete(&ad).Error; err != nil {
				return err // Rollback on storage error
			}
			return nil // Commit transaction
		})
		if err != nil {
			respondError(c, err, "Failed to delete advertisement")
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"actor_id": actor.ID, // Acting user ID
			"ad_id":    id,       // Deleted advertisement ID
		}).Info("Advertisement deleted")
		c.JSON(http.StatusOK, gin.H{"deleted_id": id})
	}
}
