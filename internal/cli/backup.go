package cli

import (
	"context"
)

// Backup exports the user's encrypted entries to the configured store.
func (a *App) Backup(ctx context.Context) error {
	key, err := a.exporter.Export(ctx, a.ownerID())
	if err != nil {
		return a.report(ctx, err)
	}
	a.printf("Backup written to %s\n", key)
	return nil
}
