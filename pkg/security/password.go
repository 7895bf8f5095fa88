// Package security contains everything related to the security of user data
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with a fixed cost. The cost never changes
// at runtime so every stored hash can be verified with the same settings.
type PasswordHasher struct {
	Cost int
}

func New() *PasswordHasher {
	return &PasswordHasher{
		Cost: 10,
	}
}

func (h *PasswordHasher) GenerateFromPassword(p string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p), h.Cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPasswd compares a password p with the stored bcrypt hash e.
// A mismatch is not an error, only a false result.
func (h *PasswordHasher) VerifyPasswd(p, e string) (ok bool, err error) {
	err = bcrypt.CompareHashAndPassword([]byte(e), []byte(p))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
