package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used when the credential rows were
// first created; changing it only affects newly hashed passwords.
const bcryptCost = 10

// PasswordHasher is a one-way hash and verify primitive for login passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type bcryptHasher struct{}

// NewPasswordHasher returns the bcrypt-backed PasswordHasher.
func NewPasswordHasher() PasswordHasher {
	return bcryptHasher{}
}

func (bcryptHasher) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (bcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
