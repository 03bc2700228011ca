package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123", 10)
	require.NoError(t, err)

	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	// bcrypt salts per call, so two hashes of the same input differ.
	other, err := HashPassword("secret123", 10)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestHashPasswordInvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secret123", -1)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "secret123"))
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("secret123", 10)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "secret123"))
	assert.Error(t, ComparePassword(hash, "secret124"))
	assert.Error(t, ComparePassword(hash, ""))
}
