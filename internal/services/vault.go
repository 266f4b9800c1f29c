package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/cryptox"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/passgen"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/dmitrijs2005/openpass/internal/session"
	"github.com/google/uuid"
)

// GenerateMarker as a password asks Add to generate one.
const GenerateMarker = "__generate__"

// generatePassword is a seam for tests.
var generatePassword = passgen.Generate

// VaultService manages the encrypted entries of the session's user.
type VaultService struct {
	exec        *dbx.Executor
	repomanager repomanager.RepositoryManager
	session     *session.Session
	log         logging.Logger
}

func NewVaultService(exec *dbx.Executor, m repomanager.RepositoryManager, sess *session.Session, log logging.Logger) *VaultService {
	return &VaultService{
		exec:        exec,
		repomanager: m,
		session:     sess,
		log:         log.With("user_id", sess.UserID()),
	}
}

// the session key only decrypts its own user's rows
func (s *VaultService) checkOwner(ownerID string) error {
	if ownerID != s.session.UserID() {
		return common.NewValidationError("owner_id", "owner does not match the logged-in user")
	}
	return nil
}

// Add encrypts and stores a credential and returns the new entry id. An
// empty password, or GenerateMarker, is replaced by a generated one.
func (s *VaultService) Add(ctx context.Context, ownerID, site, user, password string) (string, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return "", err
	}

	if password == "" || password == GenerateMarker {
		generated, err := generatePassword()
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate entry id: %w", err)
	}

	entry := &models.VaultEntry{ID: id.String(), OwnerID: ownerID}
	err = s.session.UseKey(func(key []byte) error {
		var err error
		if entry.SiteNameCipher, err = cryptox.EncryptField(site, key); err != nil {
			return err
		}
		if entry.SiteUserCipher, err = cryptox.EncryptField(user, key); err != nil {
			return err
		}
		entry.SitePasswordCipher, err = cryptox.EncryptField(password, key)
		return err
	})
	if err != nil {
		return "", err
	}

	err = s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Vault(tx).Insert(ctx, entry)
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "entry added", "entry_id", entry.ID)
	return entry.ID, nil
}

// List returns every entry of ownerID, decrypted. A field that cannot be
// decrypted is replaced by cryptox.DecryptionFailureText and recorded in
// Entry.Failed; the rest of the listing is unaffected.
func (s *VaultService) List(ctx context.Context, ownerID string) ([]models.Entry, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return nil, err
	}

	var rows []models.VaultEntry
	err := s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rows, err = s.repomanager.Vault(tx).ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(rows))
	err = s.session.UseKey(func(key []byte) error {
		for _, row := range rows {
			entries = append(entries, s.decryptRow(ctx, row, key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "entries listed", "count", len(entries))
	return entries, nil
}

func (s *VaultService) decryptRow(ctx context.Context, row models.VaultEntry, key []byte) models.Entry {
	e := models.Entry{ID: row.ID}

	fields := []struct {
		name models.Field
		blob string
		dst  *string
	}{
		{models.FieldSiteName, row.SiteNameCipher, &e.SiteName},
		{models.FieldSiteUser, row.SiteUserCipher, &e.SiteUser},
		{models.FieldSitePassword, row.SitePasswordCipher, &e.SitePassword},
	}
	for _, f := range fields {
		pt, err := cryptox.DecryptField(f.blob, key)
		if err != nil {
			s.log.Warn(ctx, "field decryption failed", "entry_id", row.ID, "field", string(f.name))
			*f.dst = cryptox.DecryptionFailureText
			e.Failed = append(e.Failed, f.name)
			continue
		}
		*f.dst = pt
	}
	return e
}

// Delete removes entryID if it belongs to ownerID. Deleting an entry that
// does not exist, or that belongs to someone else, is a silent no-op. So is
// an id that is not a UUID, since no entry can have one.
func (s *VaultService) Delete(ctx context.Context, entryID, ownerID string) error {
	if _, err := uuid.Parse(entryID); err != nil {
		s.log.Debug(ctx, "entry delete skipped, malformed id", "entry_id", entryID)
		return nil
	}

	var n int64
	err := s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = s.repomanager.Vault(tx).DeleteByIDAndOwner(ctx, entryID, ownerID)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "entry delete", "entry_id", entryID, "deleted", n)
	return nil
}

// Search lists the entries of ownerID whose site name contains query,
// ignoring case. Site names are encrypted, so matching happens after
// decryption. Entries whose site name failed to decrypt never match.
func (s *VaultService) Search(ctx context.Context, ownerID, query string) ([]models.Entry, error) {
	all, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	result := []models.Entry{}
	for _, e := range all {
		if e.HasFailed(models.FieldSiteName) {
			continue
		}
		if strings.Contains(strings.ToLower(e.SiteName), q) {
			result = append(result, e)
		}
	}
	return result, nil
}

// DeleteBySite removes every entry of ownerID whose site name equals
// siteName exactly and returns how many were removed. The deletes share one
// transaction.
func (s *VaultService) DeleteBySite(ctx context.Context, ownerID, siteName string) (int, error) {
	all, err := s.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, e := range all {
		if !e.HasFailed(models.FieldSiteName) && e.SiteName == siteName {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var total int64
	err = s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Vault(tx)
		for _, id := range ids {
			n, err := repo.DeleteByIDAndOwner(ctx, id, ownerID)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "entries deleted by site", "deleted", total)
	return int(total), nil
}

// Session returns the session the service operates under.
func (s *VaultService) Session() *session.Session { return s.session }
