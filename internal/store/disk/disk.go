// Package disk stores registry tables as JSON files in a local directory.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jun/gophbox/internal/store"
)

// Backend writes one file per table, named "<table>_db.json".
type Backend struct {
	dir string
}

func New(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Backend{dir: dir}, nil
}

func (b *Backend) Path(table string) string {
	return filepath.Join(b.dir, table+"_db.json")
}

func (b *Backend) Read(_ context.Context, table string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(table))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotExist
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the table file atomically: the data goes to a temp file in
// the same directory which is then renamed over the old one.
func (b *Backend) Write(_ context.Context, table string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, table+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.Path(table)); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
