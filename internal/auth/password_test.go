package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small parameters keep the tests fast
var testParams = NewParams(1024, 1, 1)

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", nil)
	require.NoError(t, err)
	assert.IsType(t, PlaintextHasher{}, h)

	h, err = NewHasher("argon2", testParams)
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	_, err = NewHasher("md5", nil)
	assert.Error(t, err)
}

func TestPlaintextHasher(t *testing.T) {
	var h PlaintextHasher

	stored, err := h.Hash("Password1")
	require.NoError(t, err)
	assert.Equal(t, "Password1", stored)

	ok, err := h.Verify("Password1", stored)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password1", stored)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher(t *testing.T) {
	h := NewArgon2Hasher(testParams)

	stored, err := h.Hash("Password1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "$argon2id$v="))
	assert.NotContains(t, stored, "Password1")

	ok, err := h.Verify("Password1", stored)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("Password2", stored)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := h.Hash("Password1")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("Password1", "Password1")
	assert.Error(t, err)

	_, err = VerifyPassword("Password1", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.Error(t, err)
}
