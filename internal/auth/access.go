package auth

import "classifieds_api/internal/domain" // Importing domain models

// Pure access decisions. Handlers translate a false result into 403.

// CanModifyUser reports whether actor may mutate or delete the target user.
func CanModifyUser(actor *domain.User, targetID uint) bool {
	return actor.IsAdmin() || actor.ID == targetID
}

// CanSetRole reports whether actor may change a role field at all.
func CanSetRole(actor *domain.User) bool {
	return actor.IsAdmin()
}

// CanModifyAd reports whether actor may mutate or delete the advertisement.
func CanModifyAd(actor *domain.User, ad *domain.Advertisement) bool {
	return actor.IsAdmin() || actor.ID == ad.AuthorID
}
