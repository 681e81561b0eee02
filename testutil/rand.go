package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphaNumCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomAlphaNum returns a random alphanumeric string of the given length,
// suitable for unique container and database names in tests.
func RandomAlphaNum(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphaNumCharset))))
		if err != nil {
			return "", err
		}
		out[i] = alphaNumCharset[n.Int64()]
	}

	return string(out), nil
}
