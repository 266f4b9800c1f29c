package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/secret"
	"github.com/dmitrijs2005/openpass/internal/session"
	"github.com/dmitrijs2005/openpass/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, recovery email and a confirmed master
// password and creates the account. The password buffers are wiped before
// returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter recovery email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(a.reader, "Confirm master password", a.out)
	if err != nil {
		return err
	}

	err = secret.With(confirmation, func(confirmation []byte) error {
		_, err := a.authService.RegisterAccount(ctx, userName, email, password, confirmation)
		return err
	})
	if err != nil {
		return a.report(ctx, err)
	}

	a.println("Success! You can now log in.")
	return nil
}

// Login authenticates the user and opens a session holding the field key.
// A previous session, if any, is closed first.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter master password", a.out)
	if err != nil {
		return err
	}

	var user *models.User
	var sess *session.Session
	err = secret.With(password, func(pw []byte) error {
		var err error
		if user, err = a.authService.Login(ctx, userName, pw); err != nil {
			return err
		}
		a.println("Unlocking vault...")
		sess, err = openSession(ctx, user, pw)
		return err
	})
	if err != nil {
		return a.report(ctx, err)
	}

	a.Close()
	a.vault = services.NewVaultService(a.exec, a.repomanager, sess, a.log)
	a.printf("Welcome, %s!\n", user.UserName)
	return nil
}

// Logout closes the session and wipes the in-memory key.
func (a *App) Logout(ctx context.Context) error {
	a.Close()
	a.println("Logged out.")
	return nil
}

// report prints a user-facing message for err and returns it unchanged.
func (a *App) report(ctx context.Context, err error) error {
	switch common.KindOf(err) {
	case common.KindNone:
		return nil
	case common.KindValidation:
		a.println(err.Error())
	case common.KindDuplicateUsername:
		a.println("That username is already taken.")
	case common.KindAuthentication:
		if errors.Is(err, common.ErrSessionClosed) {
			a.println("Your session has ended, please log in again.")
		} else {
			a.println("Invalid username or password.")
		}
	case common.KindDecryption:
		a.println("Could not decrypt vault data.")
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.println("Cancelled.")
			break
		}
		a.log.Error(ctx, "command failed", "error", err)
		a.println("Storage error, see the log for details.")
	}
	return err
}
