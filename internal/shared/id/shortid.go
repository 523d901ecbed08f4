// Package id generates opaque, URL-safe identifiers.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12

	// VoucherIDLength gives ~142 bits of entropy, enough that a collision is
	// treated as an integrity fault rather than retried.
	VoucherIDLength = 24
)

// Generate creates a random ID with the specified length using Base62 encoding.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// NewVoucherID generates a new voucher claim code.
func NewVoucherID() (string, error) {
	return Generate(VoucherIDLength)
}

// IsValid reports whether s is a non-empty Base62 string of at most maxLen bytes.
func IsValid(s string, maxLen int) bool {
	if s == "" || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}
