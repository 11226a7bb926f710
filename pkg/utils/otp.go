package utils

import (
	"crypto/rand"
	"math/big"
)

// RideOTPLength is the number of digits in a ride's one-time code.
const RideOTPLength = 6

// GenerateRideOTP generates a fixed-length numeric one-time code used by the
// rider to prove presence to the captain before a ride starts.
func GenerateRideOTP(length int) string {
	if length <= 0 {
		length = RideOTPLength
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; a zero digit keeps the code well-formed regardless.
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits)
}
