// Package backup exports a user's vault rows, still encrypted, to an object
// store. Backups never contain plaintext; restoring one requires the
// master password that produced the field key.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// FormatVersion is the version written into every Document.
const FormatVersion = 1

// ObjectStore stores a backup blob under key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Document is the serialized backup.
type Document struct {
	Version    int       `json:"version"`
	UserID     string    `json:"user_id"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

// Entry is one vault row as stored: every field is a ciphertext blob.
type Entry struct {
	ID           string `json:"id"`
	SiteName     string `json:"site_name"`
	SiteUser     string `json:"site_user"`
	SitePassword string `json:"site_password"`
}

type Exporter struct {
	exec        *dbx.Executor
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	log         logging.Logger
	now         func() time.Time
}

func NewExporter(exec *dbx.Executor, m repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *Exporter {
	return &Exporter{
		exec:        exec,
		repomanager: m,
		store:       store,
		log:         log,
		now:         time.Now,
	}
}

// StorageKey returns a fresh object key for a backup of ownerID taken at t.
func StorageKey(ownerID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("backups/%s/%d/%02d/%02d/%v.json", ownerID, t.Year(), t.Month(), t.Day(), uuid.New())
}

// Export writes every row of ownerID to the store and returns the key.
func (e *Exporter) Export(ctx context.Context, ownerID string) (string, error) {
	var rows []models.VaultEntry
	err := e.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rows, err = e.repomanager.Vault(tx).ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return "", err
	}

	now := e.now()
	doc := Document{
		Version:    FormatVersion,
		UserID:     ownerID,
		ExportedAt: now.UTC(),
		Entries:    make([]Entry, 0, len(rows)),
	}
	for _, r := range rows {
		doc.Entries = append(doc.Entries, Entry{
			ID:           r.ID,
			SiteName:     r.SiteNameCipher,
			SiteUser:     r.SiteUserCipher,
			SitePassword: r.SitePasswordCipher,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	key := StorageKey(ownerID, now)
	if err := e.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to store backup: %w", err)
	}

	e.log.Info(ctx, "backup exported", "user_id", ownerID, "entries", len(doc.Entries), "key", key)
	return key, nil
}
