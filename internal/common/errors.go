// Package common defines shared sentinel errors and small helpers used across
// openpass layers. Callers should use errors.Is / errors.As to match errors,
// or KindOf to branch over the closed set of failure kinds.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors: policy violations, malformed email, confirmation mismatch.
	ErrValidation = errors.New("validation error")

	// Registration errors.
	ErrDuplicateUsername = errors.New("username already exists")

	// Auth errors. Unknown user and wrong password both map here.
	ErrAuthenticationFailure = errors.New("invalid username or password")

	// Decryption errors (corrupted blob or wrong key), reported per field.
	ErrDecryptionFailure = errors.New("decryption failed")

	// Session lifecycle errors.
	ErrSessionClosed = errors.New("session closed")
)

// ValidationError describes a single rejected input. It matches ErrValidation
// via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a *ValidationError for field with message msg.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Kind is the closed set of failure categories surfaced by the core.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindDuplicateUsername
	KindAuthentication
	KindDecryption
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindAuthentication:
		return "authentication"
	case KindDecryption:
		return "decryption"
	case KindPersistence:
		return "persistence"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf classifies err. Any error outside the known sentinels is treated as
// a persistence failure, which is the only remaining propagated category.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicateUsername):
		return KindDuplicateUsername
	case errors.Is(err, ErrAuthenticationFailure), errors.Is(err, ErrSessionClosed):
		return KindAuthentication
	case errors.Is(err, ErrDecryptionFailure):
		return KindDecryption
	default:
		return KindPersistence
	}
}
