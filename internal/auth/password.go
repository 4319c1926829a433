package auth

import "golang.org/x/crypto/bcrypt" // Password hashing

// HashPassword hashes a raw password with bcrypt at the default cost.
// bcrypt generates a fresh salt per call, so two hashes of the same
// password never compare equal as strings.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPassword checks a raw password against a stored bcrypt hash.
// Any mismatch, including a malformed hash, reports false.
func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
