// Package domainerrors defines the coded error type services raise.
//
// Domain errors are expected outcomes of business rule checks (a taken
// nickname, a wrong password), distinct from unexpected internal failures.
// Services return them verbatim; the transport layer is the only place that
// translates them into client-visible responses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks input that fails a field-level rule. Raised before
	// any service call; never causes a partial mutation.
	CodeValidation Code = "VALIDATION"
	// CodeConflict marks a uniqueness constraint already held by another user.
	CodeConflict Code = "CONFLICT"
	// CodeNotFound marks a referenced identity that does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeUnauthorized marks a credential that does not match the stored hash.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeInternal marks everything that is not a domain outcome.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain failure with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	for errors.As(err, &derr) {
		if derr.Code == code {
			return true
		}
		err = derr.cause
		if err == nil {
			return false
		}
	}
	return false
}
