package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                      // Primary key
	Name     string `gorm:"size:50;unique;not null" json:"name"`       // Unique username
	Password string `gorm:"size:70;not null" json:"-"`                 // Hashed password, never serialized
	Role     Role   `gorm:"size:20;not null;default:user" json:"role"` // Role: user or admin

	// Owned rows; deleting a user cascades to both
	Tokens []Token         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Ads    []Advertisement `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
