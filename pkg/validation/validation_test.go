package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "micronation/pkg/domain-errors"
	"micronation/pkg/validation"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "user@example.com", false},
		{"subdomain", "user@mail.example.com", false},
		{"local part with dot", "jane.doe@example.com", false},
		{"missing at sign", "not a valid email address", true},
		{"missing domain", "user@", true},
		{"missing local part", "@example.com", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Email(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"valid", "password123", ""},
		{"exactly minimum length", "abc123", ""},
		{"too short", "abc12", "too short"},
		{"no number", "password", "no number"},
		{"no letter even when long", "1239009384657493", "no letter"},
		{"no letter when short", "12345", "too short"},
		{"empty", "", "too short"},
		{"letters only at minimum length", "abcdef", "no number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Password(tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNickname(t *testing.T) {
	t.Run("valid nicknames", func(t *testing.T) {
		for _, nick := range []string{"jane", "jane2", "Jane42", "abc"} {
			assert.NoError(t, validation.Nickname(nick), nick)
		}
	})

	tests := []struct {
		name     string
		nickname string
		wantMsg  string
	}{
		{"too short", "ab", "too short"},
		{"empty", "", "too short"},
		{"internal space", "has spaces", "whitespace"},
		{"leading and trailing spaces", " has spaces ", "whitespace"},
		{"tab", "nick\tname", "whitespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Nickname(tt.nickname)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("rejects symbol characters", func(t *testing.T) {
		for _, invalid := range strings.Split("! @ + ~ $ # % ^ & *", " ") {
			err := validation.Nickname("nick" + invalid + "name")
			require.Error(t, err, "expected %q to be rejected", invalid)
			assert.Contains(t, err.Error(), "letters and digits only")
		}
	})
}

func TestConfirmation(t *testing.T) {
	assert.NoError(t, validation.Confirmation("password123", "password123"))

	err := validation.Confirmation("password123", "password123 incorrect")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	require.Error(t, validation.Confirmation("password123", ""))
	require.Error(t, validation.Confirmation("", "password123"))
	assert.NoError(t, validation.Confirmation("", ""))
}
