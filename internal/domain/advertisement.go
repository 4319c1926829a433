package domain

import "time"

// Advertisement Model
type Advertisement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`            // Primary key
	CreatedAt   time.Time `json:"created_at"`                     // Timestamp of creation
	Title       string    `gorm:"size:255;not null" json:"title"` // Listing title
	Description string    `gorm:"not null" json:"description"`    // Listing description
	Price       float64   `gorm:"not null" json:"price"`          // Price, always > 0
	AuthorID    uint      `gorm:"not null;index" json:"author_id"` // Foreign key to User
}
