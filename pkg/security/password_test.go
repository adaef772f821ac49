package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortnersoft/crm-backend/pkg/config"
)

func fastConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery", fastConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("same password", fastConfig())
	require.NoError(t, err)
	second, err := HashPassword("same password", fastConfig())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := HashPassword("", fastConfig())
	assert.Error(t, err)
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("whatever", "$bcrypt$something$else$entirely$x")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestParamsAreClamped(t *testing.T) {
	// Out-of-range values fall back to safe bounds instead of failing.
	hash, err := HashPassword("pw123456", config.PasswordConfig{
		ArgonMemoryKB:    -1,
		ArgonTime:        99,
		ArgonParallelism: 0,
		ArgonSaltLen:     1,
		ArgonKeyLen:      1,
	})
	require.NoError(t, err)

	ok, err := VerifyPassword("pw123456", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
