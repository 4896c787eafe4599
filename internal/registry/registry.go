// Package registry is the folder-scoped file registry: an in-memory mirror of
// the files and folders tables that enforces their invariants and writes
// every mutation through to a Store.
//
// All operations are serialized by a single RWMutex. Mutations hold the write
// lock across both the in-memory change and the write-through, so readers see
// either the state before or after an operation, never a mix.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
)

// Store is the durable side of the registry.
type Store interface {
	Load(ctx context.Context) (model.FileTable, model.FolderTable)
	SaveFiles(ctx context.Context, files model.FileTable) error
	SaveFolders(ctx context.Context, folders model.FolderTable) error
}

// SaveInput describes an inbound file event.
type SaveInput struct {
	ID           string // platform-assigned unique id; the primary key
	Handle       string // opaque re-delivery token
	RawName      string
	Kind         model.Kind
	OwnerID      string
	TargetFolder string
}

// Stats summarizes the registry contents.
type Stats struct {
	Files   int `json:"files"`
	Folders int `json:"folders"`
}

type Registry struct {
	mu      sync.RWMutex
	files   model.FileTable
	folders model.FolderTable

	store  Store
	logger logging.Logger
	now    func() time.Time
}

type Option func(*Registry)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New loads both tables from st, repairs any invariant violations found in
// them and returns the ready registry. Repairs are written back once; a failed
// write is logged and otherwise ignored.
func New(ctx context.Context, st Store, logger logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:  st,
		logger: logger.With("component", "registry"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	files, folders := st.Load(ctx)
	if files == nil {
		files = make(model.FileTable)
	}
	folders, fixed := repair(files, folders, r.now())
	r.files = files
	r.folders = folders

	if fixed != 0 {
		r.logger.Warn(ctx, "repaired registry tables on load", "files_table", fixed&touchFiles != 0, "folders_table", fixed&touchFolders != 0)
		_ = r.persist(ctx, fixed, "repair")
	}
	r.logger.Info(ctx, "registry loaded", "files", len(r.files), "folders", len(r.folders))
	return r
}

type touched uint8

const (
	touchFiles touched = 1 << iota
	touchFolders
)

// persist writes every touched table once. Must be called with mu held.
func (r *Registry) persist(ctx context.Context, t touched, op string) error {
	var errs []error
	if t&touchFiles != 0 {
		if err := r.store.SaveFiles(ctx, r.files); err != nil {
			errs = append(errs, err)
		}
	}
	if t&touchFolders != 0 {
		if err := r.store.SaveFolders(ctx, r.folders); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	r.logger.Warn(ctx, "write-through failed, keeping in-memory state", "op", op, "error", err)
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

// SaveFile records a file. An unknown target folder falls back to the
// default folder. An existing record with the same id is overwritten.
//
// On ErrStoreFailure the returned record is still valid: the save was applied.
func (r *Registry) SaveFile(ctx context.Context, in SaveInput) (*model.FileRecord, error) {
	id := strings.TrimSpace(in.ID)
	handle := strings.TrimSpace(in.Handle)
	if id == "" && handle == "" {
		return nil, fmt.Errorf("%w: file id and handle are both empty", ErrInvalidInput)
	}
	if id == "" {
		id = handle
	}

	kind := in.Kind
	if kind == "" {
		kind = model.KindDocument
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown file kind %q", ErrInvalidInput, in.Kind)
	}

	name := strings.TrimSpace(in.RawName)
	if name == "" {
		name = kind.DefaultName()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target := model.FolderKey(in.TargetFolder)
	if _, ok := r.folders[target]; !ok {
		target = model.DefaultFolderKey
	}

	now := r.now()
	rec := &model.FileRecord{
		ID:          id,
		Handle:      handle,
		DisplayName: name,
		Kind:        kind,
		FolderID:    target,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
	}

	t := touchFiles
	if prev, ok := r.files[id]; ok {
		rec.CreatedAt = prev.CreatedAt
		rec.MovedAt = prev.MovedAt
		if prev.FolderID != target {
			if old, ok := r.folders[prev.FolderID]; ok && old.RemoveMember(id) {
				t |= touchFolders
			}
			rec.MovedAt = &now
		}
	}
	r.files[id] = rec
	if r.folders[target].AddMember(id) {
		t |= touchFolders
	}

	err := r.persist(ctx, t, "save_file")
	r.logger.Info(ctx, "file saved", "file_id", id, "kind", kind, "folder", target, "owner_id", in.OwnerID)
	return rec.Clone(), err
}

// GetFile returns a copy of the record with the given id.
func (r *Registry) GetFile(id string) (*model.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %q: %w", id, ErrNotFound)
	}
	return rec.Clone(), nil
}

// DeleteFile removes the record and its folder membership.
func (r *Registry) DeleteFile(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[id]
	if !ok {
		return fmt.Errorf("file %q: %w", id, ErrNotFound)
	}
	if f, ok := r.folders[rec.FolderID]; ok {
		f.RemoveMember(id)
	}
	delete(r.files, id)

	err := r.persist(ctx, touchFiles|touchFolders, "delete_file")
	r.logger.Info(ctx, "file deleted", "file_id", id, "folder", rec.FolderID)
	return err
}

// MoveFile moves a file into target. Moving a file into the folder it is
// already in succeeds without writing anything.
func (r *Registry) MoveFile(ctx context.Context, id, target string) (*model.FileRecord, error) {
	key := model.FolderKey(target)

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %q: %w", id, ErrNotFound)
	}
	dst, ok := r.folders[key]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", target, ErrNotFound)
	}
	if rec.FolderID == key {
		return rec.Clone(), nil
	}

	from := rec.FolderID
	if src, ok := r.folders[from]; ok {
		src.RemoveMember(id)
	}
	dst.AddMember(id)
	now := r.now()
	rec.FolderID = key
	rec.MovedAt = &now

	err := r.persist(ctx, touchFiles|touchFolders, "move_file")
	r.logger.Info(ctx, "file moved", "file_id", id, "from", from, "to", key)
	return rec.Clone(), err
}

// CreateFolder adds an empty folder. The name is truncated to
// model.MaxFolderNameLength characters before the key is derived.
func (r *Registry) CreateFolder(ctx context.Context, name, creatorID string) (*model.Folder, error) {
	display := model.TruncateName(name)
	if display == "" {
		return nil, fmt.Errorf("%w: folder name is empty", ErrInvalidInput)
	}
	key := strings.ToLower(display)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[key]; ok {
		return nil, fmt.Errorf("folder %q: %w", display, ErrAlreadyExists)
	}
	f := &model.Folder{
		Key:         key,
		DisplayName: display,
		Members:     []string{},
		CreatedAt:   r.now(),
		CreatorID:   creatorID,
	}
	r.folders[key] = f

	err := r.persist(ctx, touchFolders, "create_folder")
	r.logger.Info(ctx, "folder created", "folder", key, "creator_id", creatorID)
	return f.Clone(), err
}

// RenameFolder gives a folder a new name and, when the key changes,
// re-keys it and repoints every member file.
func (r *Registry) RenameFolder(ctx context.Context, oldKey, newName string) (*model.Folder, error) {
	old := model.FolderKey(oldKey)
	display := model.TruncateName(newName)
	if display == "" {
		return nil, fmt.Errorf("%w: new folder name is empty", ErrInvalidInput)
	}
	newKey := strings.ToLower(display)

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[old]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", oldKey, ErrNotFound)
	}
	if old == model.DefaultFolderKey {
		return nil, fmt.Errorf("%w: the default folder cannot be renamed", ErrInvalidInput)
	}
	if newKey != old {
		if _, taken := r.folders[newKey]; taken {
			return nil, fmt.Errorf("folder %q: %w", display, ErrAlreadyExists)
		}
	}

	f.DisplayName = display
	t := touchFolders
	if newKey != old {
		delete(r.folders, old)
		f.Key = newKey
		r.folders[newKey] = f
		for _, rec := range r.files {
			if rec.FolderID == old {
				rec.FolderID = newKey
				t |= touchFiles
			}
		}
	}

	err := r.persist(ctx, t, "rename_folder")
	r.logger.Info(ctx, "folder renamed", "from", old, "to", newKey)
	return f.Clone(), err
}

// DeleteFolder removes a folder and moves its files into the default folder.
// It returns how many files were moved.
func (r *Registry) DeleteFolder(ctx context.Context, key string) (int, error) {
	k := model.FolderKey(key)
	if k == model.DefaultFolderKey {
		return 0, fmt.Errorf("%w: the default folder cannot be deleted", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.folders[k]
	if !ok {
		return 0, fmt.Errorf("folder %q: %w", key, ErrNotFound)
	}
	def := r.folders[model.DefaultFolderKey]
	now := r.now()

	moved := 0
	rehome := func(id string) {
		rec, ok := r.files[id]
		if !ok || rec.FolderID != k {
			return
		}
		rec.FolderID = model.DefaultFolderKey
		rec.MovedAt = &now
		def.AddMember(id)
		moved++
	}
	for _, id := range f.Members {
		rehome(id)
	}
	// Records pointing here without being listed as members.
	for _, rec := range sortedRecords(r.files) {
		rehome(rec.ID)
	}
	delete(r.folders, k)

	err := r.persist(ctx, touchFiles|touchFolders, "delete_folder")
	r.logger.Info(ctx, "folder deleted", "folder", k, "moved", moved)
	return moved, err
}
