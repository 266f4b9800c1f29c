// Package session holds the authenticated user and the derived field key
// for the lifetime of a login.
//
// A Session replaces any process-wide "current user" state: callers obtain
// one from Open after a successful login and pass it to the vault service.
// The key is zeroed by Close and never leaves the package except through
// UseKey.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/cryptox"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/secret"
)

// Seams for tests.
var (
	deriveKey = cryptox.DeriveKey
	wipeKey   = common.WipeByteArray
)

type Session struct {
	user *models.User
	key  *secret.Secret
}

type derived struct {
	key []byte
	err error
}

// Open derives the field key for user from masterPassword and returns a
// live session. Derivation runs on its own goroutine; Open blocks until it
// finishes or ctx is done. masterPassword is wiped before Open returns.
func Open(ctx context.Context, user *models.User, masterPassword []byte) (*Session, error) {
	defer common.WipeByteArray(masterPassword)

	if user == nil {
		return nil, errors.New("session: nil user")
	}

	pw := make([]byte, len(masterPassword))
	copy(pw, masterPassword)
	salt := append([]byte(nil), user.KDFSalt...)

	ch := make(chan derived, 1)
	go func() {
		defer common.WipeByteArray(pw)
		k, err := deriveKey(pw, salt)
		ch <- derived{key: k, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return &Session{user: user, key: secret.Adopt(r.key)}, nil
	case <-ctx.Done():
		// nobody will read the key; wipe it once derivation completes
		go func() {
			r := <-ch
			wipeKey(r.key)
		}()
		return nil, ctx.Err()
	}
}

// FromKey builds a session around an already derived key. The session takes
// ownership of key and zeroes it on Close.
func FromKey(user *models.User, key []byte) (*Session, error) {
	if user == nil {
		return nil, errors.New("session: nil user")
	}
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("session: key length %d, want %d", len(key), cryptox.KeySize)
	}
	return &Session{user: user, key: secret.Adopt(key)}, nil
}

// User returns the authenticated account.
func (s *Session) User() *models.User { return s.user }

// UserID is shorthand for User().ID.
func (s *Session) UserID() string { return s.user.ID }

// UseKey lends the field key to fn. It returns common.ErrSessionClosed after
// Close.
func (s *Session) UseKey(fn func(key []byte) error) error {
	err := s.key.Use(fn)
	if err == secret.ErrDestroyed {
		return common.ErrSessionClosed
	}
	return err
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.key.Destroyed() }

// Close zeroes the key. It is safe to call more than once.
func (s *Session) Close() {
	s.key.Zero()
}

// String never reveals the key.
func (s *Session) String() string {
	return "session(" + s.user.UserName + ")"
}
