package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost of 12 keeps a single verification under ~300ms on
// current hardware.
const bcryptCost = 12

// HashPassword derives a salted bcrypt hash from the plain password.
// Each call produces a different hash for the same input.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain password matches the stored
// bcrypt hash. Any comparison failure, including a malformed hash,
// counts as a mismatch.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
