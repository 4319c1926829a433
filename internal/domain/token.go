package domain

import "time"

// Token Model
//
// A token row is written once at login and never updated; expiry is
// computed from CreatedAt against the configured TTL, not stored.
type Token struct {
	ID        uint      `gorm:"primaryKey"`                   // Primary key
	Token     string    `gorm:"size:36;uniqueIndex;not null"` // Opaque UUID identifier
	CreatedAt time.Time `gorm:"not null"`                     // Issuance timestamp
	UserID    uint      `gorm:"not null;index"`               // Foreign key to User
}
