package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Verification codes are six decimal digits, never starting with zero
const (
	otpMin = 100000
	otpMax = 999999
)

const tempPasswordCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateOTP returns a random numeric code in [100000, 999999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", otpMin+n.Int64()), nil
}

// GenerateTempPassword returns a random lowercase-alphanumeric password of
// the given length, used when a user forgets their password
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("temp password length must be positive")
	}

	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate temp password: %w", err)
		}
		result[i] = tempPasswordCharset[n.Int64()]
	}

	return string(result), nil
}
