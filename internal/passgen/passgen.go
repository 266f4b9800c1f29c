// Package passgen generates random site passwords.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// DefaultLength is the length of passwords produced by Generate.
	DefaultLength = 32
	// MinSpecials is the minimum number of Specials in a generated password.
	MinSpecials = 3

	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
	// Specials is the ASCII punctuation set.
	Specials = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	alphabet = letters + digits + Specials
)

var ErrTooShort = errors.New("password length must be at least 3")

// Generate returns a DefaultLength password with at least MinSpecials
// special characters.
func Generate() (string, error) {
	return GenerateN(DefaultLength)
}

// GenerateN returns an n-character password drawn uniformly from letters,
// digits and Specials, regenerated until it holds at least MinSpecials
// specials. Every character comes from crypto/rand.
func GenerateN(n int) (string, error) {
	if n < MinSpecials {
		return "", ErrTooShort
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for {
		for i := range buf {
			idx, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("random source failed: %w", err)
			}
			buf[i] = alphabet[idx.Int64()]
		}
		if CountSpecials(string(buf)) >= MinSpecials {
			return string(buf), nil
		}
	}
}

// CountSpecials returns how many characters of s are in Specials.
func CountSpecials(s string) int {
	n := 0
	for _, c := range s {
		if strings.ContainsRune(Specials, c) {
			n++
		}
	}
	return n
}
