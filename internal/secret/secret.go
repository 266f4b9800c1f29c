// Package secret holds sensitive byte material (derived keys, master
// passwords) behind a wrapper that redacts itself when formatted or marshaled
// and overwrites its contents on release.
package secret

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/openpass/internal/common"
)

const redacted = "[SECRET]"

// ErrDestroyed is returned by Use after Zero has been called.
var ErrDestroyed = errors.New("secret destroyed")

// Secret owns a private copy of sensitive bytes. The zero value is an empty,
// already destroyed secret. A Secret must not be copied after first use.
type Secret struct {
	mu        sync.RWMutex
	b         []byte
	destroyed bool
}

// Adopt takes ownership of b without copying. b must not be used by the
// caller afterwards.
func Adopt(b []byte) *Secret {
	return &Secret{b: b}
}

// Use lends the underlying bytes to fn. The slice is only valid for the
// duration of the call; fn must not retain it.
func (s *Secret) Use(fn func([]byte) error) error {
	if s == nil {
		return ErrDestroyed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed || s.b == nil {
		return ErrDestroyed
	}
	return fn(s.b)
}

// Zero overwrites the held bytes and marks the secret destroyed. It waits for
// in-flight Use calls to return. Calling Zero more than once is safe.
func (s *Secret) Zero() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.b)
	s.b = nil
	s.destroyed = true
}

// Destroyed reports whether Zero has been called.
func (s *Secret) Destroyed() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// With runs fn with b and wipes b on every exit path, including panics.
func With(b []byte, fn func([]byte) error) error {
	defer common.WipeByteArray(b)
	return fn(b)
}

// String redacts the secret for fmt.Print* convenience.
func (s *Secret) String() string { return redacted }

// Format implements fmt.Formatter so %v, %#v, %x and friends are redacted.
func (s *Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON output.
func (s *Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoders (slog, yaml).
func (s *Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }
