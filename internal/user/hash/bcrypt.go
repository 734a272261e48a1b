// Package hash implements the password-hashing capability with bcrypt.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "micronation/pkg/domain-errors"
)

// Bcrypt hashes and verifies passwords with a fixed cost.
type Bcrypt struct {
	cost int
}

// New creates a bcrypt hasher. Costs outside bcrypt's valid range fall back
// to the library default.
func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash creates a bcrypt digest of the plaintext.
func (b *Bcrypt) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks the plaintext against a bcrypt digest. A mismatch is
// reported as a plain error; the service decides what it means.
func (b *Bcrypt) Verify(plain, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)); err != nil {
		return fmt.Errorf("password mismatch: %w", err)
	}
	return nil
}
