package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3cretPass!")
	require.NoError(t, err)
	assert.NotEqual(t, "S3cretPass!", hash)

	assert.True(t, CheckPassword(hash, "S3cretPass!"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)

	// bcrypt salts every hash
	assert.NotEqual(t, first, second)
}
