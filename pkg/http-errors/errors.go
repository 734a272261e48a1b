// Package httperrors translates domain failures into the client-facing error
// envelope. Every domain failure maps to the same client-error class (400)
// so callers can distinguish "you did something wrong" from "we broke"
// without depending on per-rule status codes.
package httperrors

import (
	"errors"
	"net/http"

	dErrors "micronation/pkg/domain-errors"
)

// Code is the machine-readable error identifier written in the response body.
type Code string

const (
	// CodeInvalidRequest marks a request body that could not be decoded.
	CodeInvalidRequest Code = "INVALID_REQUEST"
	// CodeInvalidInput marks a field that failed validation.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeNoIdentity marks a request that reached an authenticated route
	// without an upstream-established identity. This is a transport concern,
	// not a domain failure, so it keeps its own status.
	CodeNoIdentity Code = "NO_IDENTITY"
	// CodeInternal marks an unexpected server-side failure.
	CodeInternal Code = "INTERNAL"
)

// Error is a transport-level error carrying a response code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// New creates a transport error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// FromDomain converts any error into a transport error. Domain errors keep
// their code in the body; everything else collapses to INTERNAL so internal
// details never leak to clients.
func FromDomain(err error) *Error {
	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}
	var derr *dErrors.Error
	if errors.As(err, &derr) && derr.Code != dErrors.CodeInternal {
		return &Error{Code: Code(derr.Code), Message: derr.Message}
	}
	return &Error{Code: CodeInternal, Message: "internal error"}
}

// ToHTTPStatus maps an error code to its HTTP status. Every domain failure
// shares a single client-error status; only the missing-identity case and
// internal failures differ.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeNoIdentity:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
