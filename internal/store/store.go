// Package store persists the registry's two tables (files and folders).
//
// Each table is serialized independently as a versioned JSON envelope and
// handed to a Backend, which only moves bytes. A table that is missing or
// cannot be decoded loads as empty so the process can still start.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
)

const (
	TableFiles   = "files"
	TableFolders = "folders"
)

const schemaVersion = 1

// ErrNotExist is returned by a Backend when a table has never been written.
var ErrNotExist = errors.New("table does not exist")

// Backend reads and overwrites serialized tables by name.
type Backend interface {
	Read(ctx context.Context, table string) ([]byte, error)
	Write(ctx context.Context, table string, data []byte) error
}

type envelope[T any] struct {
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
	Records   map[string]T `json:"records"`
}

// Store encodes tables and delegates durable I/O to a Backend.
type Store struct {
	backend Backend
	logger  logging.Logger
	now     func() time.Time
}

func New(backend Backend, logger logging.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		now:     time.Now,
	}
}

// Load reads both tables. It never fails: a table that is absent or
// unreadable comes back empty and a warning is logged.
func (s *Store) Load(ctx context.Context) (model.FileTable, model.FolderTable) {
	files := readTable[model.FileRecord](ctx, s, TableFiles)
	folders := readTable[model.Folder](ctx, s, TableFolders)
	return model.FileTable(files), model.FolderTable(folders)
}

// SaveFiles overwrites the files table.
func (s *Store) SaveFiles(ctx context.Context, files model.FileTable) error {
	return writeTable(ctx, s, TableFiles, map[string]*model.FileRecord(files))
}

// SaveFolders overwrites the folders table.
func (s *Store) SaveFolders(ctx context.Context, folders model.FolderTable) error {
	return writeTable(ctx, s, TableFolders, map[string]*model.Folder(folders))
}

func readTable[T any](ctx context.Context, s *Store, table string) map[string]*T {
	empty := make(map[string]*T)

	data, err := s.backend.Read(ctx, table)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			s.logger.Warn(ctx, "table not found, starting empty", "table", table)
		} else {
			s.logger.Warn(ctx, "table read failed, starting empty", "table", table, "error", err)
		}
		return empty
	}

	var env envelope[*T]
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn(ctx, "table is not valid JSON, starting empty", "table", table, "error", err)
		return empty
	}
	if env.Version != schemaVersion {
		s.logger.Warn(ctx, "unsupported table version, starting empty", "table", table, "version", env.Version)
		return empty
	}

	for k, v := range env.Records {
		if v == nil {
			delete(env.Records, k)
		}
	}
	if env.Records == nil {
		return empty
	}
	return env.Records
}

func writeTable[T any](ctx context.Context, s *Store, table string, records map[string]*T) error {
	if records == nil {
		records = make(map[string]*T)
	}
	env := envelope[*T]{
		Version:   schemaVersion,
		UpdatedAt: s.now().UTC(),
		Records:   records,
	}
	data, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s table: %w", table, err)
	}
	if err := s.backend.Write(ctx, table, data); err != nil {
		return fmt.Errorf("write %s table: %w", table, err)
	}
	return nil
}
