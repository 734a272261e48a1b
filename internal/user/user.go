// Package user defines the identity domain: the persisted user shape, the
// password-hashing capability, and the domain failures the identity service
// raises.
package user

import (
	"time"

	dErrors "micronation/pkg/domain-errors"
)

// Document is the user record as stored in the users collection. The email
// and nickname fields carry unique constraints; the password hash is opaque
// and never serialized outward (the transport layer only ever returns User).
type Document struct {
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"password_hash"`
}

// User is the identity exposed to callers. It never includes the password
// hash.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordHasher is the opaque hash/verify capability injected into the
// service. Tests substitute a deterministic fake.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify returns a non-nil error when the plaintext does not match the
	// digest.
	Verify(plain, digest string) error
}

// Domain failures. The service returns these verbatim; the transport layer
// is the only place that downgrades them into client-visible responses.
var (
	ErrEmailTaken        = dErrors.New(dErrors.CodeConflict, "email already taken")
	ErrNicknameTaken     = dErrors.New(dErrors.CodeConflict, "nickname already taken")
	ErrEmailNotFound     = dErrors.New(dErrors.CodeNotFound, "email not found")
	ErrIncorrectPassword = dErrors.New(dErrors.CodeUnauthorized, "incorrect password")
)
