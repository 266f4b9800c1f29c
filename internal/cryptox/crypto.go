// Package cryptox implements master-key derivation and per-field
// authenticated encryption for vault rows.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/openpass/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the per-user KDF salt.
	SaltSize = 16
	// KeySize is the derived AES-256 key length.
	KeySize = 32
	// NonceSize is the AES-GCM standard nonce length.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
	// Iterations is the PBKDF2-HMAC-SHA256 work factor.
	Iterations = 600_000

	// DecryptionFailureText is shown in place of a field that failed to decrypt.
	DecryptionFailureText = "--- ERROR: COULD NOT DECRYPT ---"
)

// ErrDecryptionFailure is returned by DecryptField for any malformed blob,
// wrong key or failed tag check. It matches common.ErrDecryptionFailure.
var ErrDecryptionFailure = fmt.Errorf("cryptox: %w", common.ErrDecryptionFailure)

// kdfIterations is a seam for tests that are not about the work factor.
var kdfIterations = Iterations

// GenerateSalt returns a fresh SaltSize-byte salt from crypto/rand.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt generation failed: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a KeySize-byte AES key from masterPassword and salt using
// PBKDF2-HMAC-SHA256. Identical inputs always produce the identical key.
//
// The returned slice is key material: hand it to a secret.Secret and never
// log or persist it.
func DeriveKey(masterPassword, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("invalid salt length %d, want %d", len(salt), SaltSize)
	}
	return pbkdf2.Key(masterPassword, salt, kdfIterations, KeySize, sha256.New), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length %d, want %d", len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptField encrypts plaintext with AES-256-GCM under key.
//
// A new random 12-byte nonce is generated for every call; there is no way to
// supply one. The result is base64(nonce || ciphertext || tag), safe to store
// in a TEXT column.
//
// Example:
//
//	blob, err := cryptox.EncryptField("github", key)
//	if err != nil {
//	    return err
//	}
//	name, err := cryptox.DecryptField(blob, key)
func EncryptField(plaintext string, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}

	// nonce is used as the dst prefix so the output is nonce || ct || tag
	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField reverses EncryptField. Any failure, including a malformed
// blob or a key of the wrong size, yields ErrDecryptionFailure so callers can
// treat a bad field as data instead of aborting.
func DecryptField(blob string, key []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrDecryptionFailure
	}
	if len(data) < NonceSize+TagSize {
		return "", ErrDecryptionFailure
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", ErrDecryptionFailure
	}

	nonce, ct := data[:NonceSize], data[NonceSize:]
	plaintext, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrDecryptionFailure
	}
	return string(plaintext), nil
}
