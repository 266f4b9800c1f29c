package cli

import (
	"context"

	"github.com/dmitrijs2005/openpass/internal/advisor"
	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/policy"
)

// Strength rates a password locally, checks it against the configured
// breached list and, when an advisor is configured, asks for advice in the
// background.
func (a *App) Strength(ctx context.Context) error {
	password, err := getPassword(a.reader, "Enter password to check", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pw := string(password)
	a.printf("Strength: %s\n", policy.Strength(pw))
	for _, r := range policy.Validate(pw) {
		a.printf("  - %s\n", r)
	}

	if a.config.Wordlist != "" {
		breached, err := advisor.BreachedFile(ctx, a.config.Wordlist, pw)
		switch {
		case err != nil:
			a.log.Warn(ctx, "breached list lookup failed", "error", err)
		case breached:
			a.println("This password appears in a breached password list!")
		default:
			a.println("Not found in the breached password list.")
		}
	}

	a.adviseInBackground(ctx, pw)
	return nil
}

// adviseInBackground asks the advisor about password without blocking. The
// answer is printed whenever it arrives.
func (a *App) adviseInBackground(ctx context.Context, password string) {
	if a.advisor == nil {
		return
	}

	a.advising.Add(1)
	advisor.AdviseAsync(ctx, a.advisor, password, func(answer string, err error) {
		defer a.advising.Done()
		if err != nil {
			a.log.Warn(ctx, "advisor request failed", "error", err)
			return
		}
		a.printf("\nAdvisor: %s\n", answer)
	})
}
