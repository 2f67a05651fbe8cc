package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NumericCode returns a six digit code in [100000, 999999], so the code
// never has a leading zero.
func NumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate numeric code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// HexToken returns a URL-safe random token of 2*n hex characters.
func HexToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
