package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tokens := NewTokens("secret-key", time.Hour)

	signed, err := tokens.Generate("64f1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	sub, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "64f1b2c3d4e5f60718293a4b", sub)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-one", time.Hour).Generate("abc")
	require.NoError(t, err)

	_, err = NewTokens("secret-two", time.Hour).Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("secret-key", -time.Minute)

	signed, err := tokens.Generate("abc")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tokens := NewTokens("secret-key", time.Hour)

	_, err := tokens.Validate("not.a.token")
	assert.Error(t, err)

	_, err = tokens.Validate("")
	assert.Error(t, err)
}
