package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/passgen"
	"github.com/dmitrijs2005/openpass/internal/policy"
)

const passwordMask = "********"

// Add prompts for a site, a site username and a password. An empty password
// asks the vault to generate one.
func (a *App) Add(ctx context.Context) error {
	site, err := getSimpleText(a.reader, "Enter site name", a.out)
	if err != nil {
		return err
	}

	siteUser, err := getSimpleText(a.reader, "Enter site username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter site password (empty to generate)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.vault.Add(ctx, a.ownerID(), site, siteUser, string(password))
	if err != nil {
		return a.report(ctx, err)
	}

	if len(password) == 0 {
		a.printf("Entry %s added with a generated password, use 'reveal' to see it.\n", id)
		return nil
	}

	a.printf("Entry %s added. Password strength: %s\n", id, policy.Strength(string(password)))
	a.adviseInBackground(ctx, string(password))
	return nil
}

// List prints every entry with passwords masked.
func (a *App) List(ctx context.Context) error {
	entries, err := a.vault.List(ctx, a.ownerID())
	if err != nil {
		return a.report(ctx, err)
	}
	a.printEntries(entries)
	return nil
}

// Search lists entries whose site name contains the query, ignoring case.
func (a *App) Search(ctx context.Context) error {
	query, err := getSimpleText(a.reader, "Search site", a.out)
	if err != nil {
		return err
	}

	entries, err := a.vault.Search(ctx, a.ownerID(), query)
	if err != nil {
		return a.report(ctx, err)
	}
	a.printEntries(entries)
	return nil
}

// Reveal prints the password of a single entry.
func (a *App) Reveal(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id", a.out)
	if err != nil {
		return err
	}

	entries, err := a.vault.List(ctx, a.ownerID())
	if err != nil {
		return a.report(ctx, err)
	}

	for _, e := range entries {
		if e.ID == id {
			a.printf("%s\n", e.SitePassword)
			return nil
		}
	}

	a.println("No such entry.")
	return nil
}

// Delete removes one entry by id.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to delete", a.out)
	if err != nil {
		return err
	}

	if err := a.vault.Delete(ctx, id, a.ownerID()); err != nil {
		return a.report(ctx, err)
	}

	a.println("Done.")
	return nil
}

// DeleteSite removes every entry for an exact site name after confirmation.
func (a *App) DeleteSite(ctx context.Context) error {
	site, err := getSimpleText(a.reader, "Enter site name to delete", a.out)
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete all entries for %q?", site), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Aborted.")
		return nil
	}

	n, err := a.vault.DeleteBySite(ctx, a.ownerID(), site)
	if err != nil {
		return a.report(ctx, err)
	}

	a.printf("Deleted %d entries.\n", n)
	return nil
}

// Generate prints a fresh random password.
func (a *App) Generate(ctx context.Context) error {
	pw, err := passgen.Generate()
	if err != nil {
		return a.report(ctx, err)
	}
	a.println(pw)
	return nil
}

func (a *App) printEntries(entries []models.Entry) {
	if len(entries) == 0 {
		a.println("No entries.")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSITE\tUSERNAME\tPASSWORD")
	for _, e := range entries {
		pw := passwordMask
		if e.HasFailed(models.FieldSitePassword) {
			pw = e.SitePassword
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.SiteName, e.SiteUser, pw)
	}
	_ = tw.Flush()
}
