package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateVerificationCodeWithExpiry(t *testing.T) {
	code, expiry, err := GenerateVerificationCodeWithExpiry()
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.WithinDuration(t, time.Now().Add(VerificationTTL), expiry, 5*time.Second)
}
