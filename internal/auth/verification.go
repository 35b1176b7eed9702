package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// VerificationTTL is how long an emailed verification code stays valid.
const VerificationTTL = 10 * time.Minute

// GenerateVerificationCode returns a 6-digit numeric code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateVerificationCodeWithExpiry returns a code plus its expiry time.
func GenerateVerificationCodeWithExpiry() (string, time.Time, error) {
	code, err := GenerateVerificationCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, time.Now().Add(VerificationTTL), nil
}
