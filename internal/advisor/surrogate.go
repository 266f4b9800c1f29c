// Package advisor talks to an external language-model service that rates
// password strength. The real password is never sent: callers pass a
// surrogate that only keeps its character-class shape.
package advisor

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowerSet = "abcdefghijklmnopqrstuvwxyz"
	upperSet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitSet = "0123456789"
	punctSet = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Surrogate replaces every character of password with a random character of
// the same class (lowercase, uppercase, digit, ASCII punctuation). Any other
// character is dropped.
func Surrogate(password string) (string, error) {
	var b strings.Builder
	b.Grow(len(password))

	for _, c := range password {
		var set string
		switch {
		case strings.ContainsRune(lowerSet, c):
			set = lowerSet
		case strings.ContainsRune(upperSet, c):
			set = upperSet
		case strings.ContainsRune(digitSet, c):
			set = digitSet
		case strings.ContainsRune(punctSet, c):
			set = punctSet
		default:
			continue
		}

		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return "", fmt.Errorf("random source failed: %w", err)
		}
		b.WriteByte(set[idx.Int64()])
	}
	return b.String(), nil
}
