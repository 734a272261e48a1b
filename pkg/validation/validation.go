// Package validation holds the pure field validators for identity input.
//
// Every function is stateless and deterministic: no store access, no side
// effects. Failures are coded VALIDATION domain errors naming the field and
// the rule that failed; callers that only care about pass/fail can treat any
// non-nil error as invalid input.
package validation

import (
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"

	dErrors "micronation/pkg/domain-errors"
)

const (
	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 6
	// NicknameMinLength is the shortest accepted nickname.
	NicknameMinLength = 3
)

// Email checks the string against the standard email address grammar.
func Email(s string) error {
	if !govalidator.IsEmail(s) {
		return dErrors.New(dErrors.CodeValidation, "email: invalid address")
	}
	return nil
}

// Password enforces the password rules: minimum length, at least one letter,
// at least one digit. The checks run in that order and only the first failure
// is reported; a long all-digit string still fails the letter rule and a long
// all-letter string still fails the digit rule.
func Password(s string) error {
	if len(s) < PasswordMinLength {
		return dErrors.New(dErrors.CodeValidation, "password: too short")
	}
	if !strings.ContainsFunc(s, unicode.IsLetter) {
		return dErrors.New(dErrors.CodeValidation, "password: no letter")
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return dErrors.New(dErrors.CodeValidation, "password: no number")
	}
	return nil
}

// Nickname enforces the nickname rules: minimum length, no whitespace
// anywhere, letters and digits only.
func Nickname(s string) error {
	if len(s) < NicknameMinLength {
		return dErrors.New(dErrors.CodeValidation, "nickname: too short")
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return dErrors.New(dErrors.CodeValidation, "nickname: contains whitespace")
	}
	if !govalidator.IsAlphanumeric(s) {
		return dErrors.New(dErrors.CodeValidation, "nickname: letters and digits only")
	}
	return nil
}

// Confirmation checks that a value and its confirmation counterpart match
// exactly.
func Confirmation(value, confirmation string) error {
	if value != confirmation {
		return dErrors.New(dErrors.CodeValidation, "confirmation: does not match")
	}
	return nil
}
