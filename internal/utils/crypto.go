// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateOrderNo builds a human-readable order number: timestamp plus a
// random suffix. Uniqueness is enforced by the orders.order_no index.
func GenerateOrderNo() string {
	suffix, err := GenerateRandomString(6)
	if err != nil {
		suffix = "000000"
	}
	return fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), suffix)
}
