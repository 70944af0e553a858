package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.Contains(t, string(hash), "$argon2id$")

	ok, err := VerifyPassword("correct-horse-battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$t=3,m=65536,p=2$only-four-parts",
		"$bcrypt$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA==",
		"$argon2id$v=19$t=3,m=65536,p=2$!!notbase64!!$aGFzaA==",
	}
	for _, encoded := range cases {
		_, err := VerifyPassword("anything", []byte(encoded))
		assert.Error(t, err, "input %q", encoded)
	}
}
