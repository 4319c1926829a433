package auth

import (
	"errors" // Error values
	"time"   // Timestamps and TTL arithmetic

	"classifieds_api/internal/domain" // Importing domain models

	"github.com/google/uuid" // Opaque token identifiers
	"gorm.io/gorm"           // GORM ORM library
)

// ErrInvalidToken covers every resolution failure: malformed identifier,
// unknown identifier, expired token, or a token whose user is gone.
var ErrInvalidToken = errors.New("invalid or expired token")

// IssueToken creates and persists a token for the given user.
// The identifier is a fresh random UUID; expiry is never stored, it is
// computed from CreatedAt at resolution time.
func IssueToken(gdb *gorm.DB, userID uint) (*domain.Token, error) {
	t := domain.Token{
		Token:  uuid.NewString(), // Random 128-bit identifier
		UserID: userID,           // Owning user
	}
	// A vanished user surfaces as a foreign key error from the insert
	if err := gdb.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ResolveToken looks up a raw token identifier and returns its user.
// A token issued at time T is accepted while now - T <= ttl (boundary
// inclusive); TTL is measured from issuance, never refreshed by use.
func ResolveToken(gdb *gorm.DB, raw string, now time.Time, ttl time.Duration) (*domain.User, error) {
	// Reject anything that is not a UUID before touching the database
	if _, err := uuid.Parse(raw); err != nil {
		return nil, ErrInvalidToken
	}
	var t domain.Token // Token row
	// Lookup bounded by issuance time, so expired rows never match
	if err := gdb.Where("token = ? AND created_at >= ?", raw, now.Add(-ttl)).First(&t).Error; err != nil {
		return nil, ErrInvalidToken
	}
	var u domain.User // Owning user
	if err := gdb.First(&u, t.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	return &u, nil
}
