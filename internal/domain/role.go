package domain

import "fmt"

// Role is the closed set of user roles
type Role string

// Allowed roles
const (
	RoleUser  Role = "user"  // Regular user, may only touch own rows
	RoleAdmin Role = "admin" // Admin, may touch any row
)

// ParseRole validates a raw role string against the allowed set
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil // Recognized role
	}
	return "", fmt.Errorf("invalid role %q", s) // Anything else is rejected
}
