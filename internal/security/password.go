package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Credential policy for applicant and admin accounts.
const (
	bcryptCost     = 12
	MinPasswordLen = 8
)

// ErrPasswordTooShort indicates a password below MinPasswordLen.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ValidatePassword enforces the account password policy on a trimmed
// plaintext password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword derives the bcrypt hash stored on the user record.
func HashPassword(password string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
