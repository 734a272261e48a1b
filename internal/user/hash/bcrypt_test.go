package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	digest, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", digest)

	assert.NoError(t, hasher.Verify("password123", digest))
	assert.Error(t, hasher.Verify("wrongpassword1", digest))
}

func TestBcryptDistinctDigests(t *testing.T) {
	hasher := New(bcrypt.MinCost)

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	// bcrypt salts every digest; equal inputs still produce distinct hashes.
	assert.NotEqual(t, first, second)
}

func TestBcryptInvalidCostFallsBack(t *testing.T) {
	hasher := New(99)

	digest, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NoError(t, hasher.Verify("password123", digest))
}
