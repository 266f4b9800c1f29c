package backup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/openpass/internal/filex"
)

// FileStore writes backups below a local directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Put writes data to dir/key with mode 0600, creating parent directories.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("invalid backup key %q", key)
	}

	if err := filex.WritePrivate(filepath.Join(s.dir, rel), data); err != nil {
		return fmt.Errorf("error writing backup file: %w", err)
	}
	return nil
}
