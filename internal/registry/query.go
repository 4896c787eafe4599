package registry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jun/gophbox/internal/model"
)

// Helper for case-insensitive check
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortedRecords returns the records ordered by creation time, then id.
func sortedRecords(files model.FileTable) []*model.FileRecord {
	out := make([]*model.FileRecord, 0, len(files))
	for _, rec := range files {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *model.FileRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ListFolder returns the folder's files in insertion order. The list is not
// truncated.
func (r *Registry) ListFolder(key string) ([]*model.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.folders[model.FolderKey(key)]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", key, ErrNotFound)
	}
	out := make([]*model.FileRecord, 0, len(f.Members))
	for _, id := range f.Members {
		if rec, ok := r.files[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// Search returns files whose display name, kind or folder key contains
// keyword, ignoring case. An empty keyword matches every file.
func (r *Registry) Search(keyword string) []*model.FileRecord {
	keyword = strings.TrimSpace(keyword)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.FileRecord{}
	for _, rec := range sortedRecords(r.files) {
		if keyword == "" ||
			containsIgnoreCase(rec.DisplayName, keyword) ||
			containsIgnoreCase(string(rec.Kind), keyword) ||
			containsIgnoreCase(rec.FolderID, keyword) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// ListAllFiles returns every file with its folder's display name.
func (r *Registry) ListAllFiles() []model.FileView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.FileView, 0, len(r.files))
	for _, rec := range sortedRecords(r.files) {
		v := model.FileView{FileRecord: *rec.Clone()}
		if f, ok := r.folders[rec.FolderID]; ok {
			v.FolderName = f.DisplayName
		}
		out = append(out, v)
	}
	return out
}

// ListFolders returns all folders, the default folder first and the rest
// ordered by key.
func (r *Registry) ListFolders() []*model.Folder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Folder, 0, len(r.folders))
	for _, f := range r.folders {
		out = append(out, f.Clone())
	}
	slices.SortFunc(out, func(a, b *model.Folder) int {
		switch {
		case a.Key == b.Key:
			return 0
		case a.Key == model.DefaultFolderKey:
			return -1
		case b.Key == model.DefaultFolderKey:
			return 1
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// GetFolder looks a folder up by key or by name.
func (r *Registry) GetFolder(key string) (*model.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.folders[model.FolderKey(key)]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", key, ErrNotFound)
	}
	return f.Clone(), nil
}

// HasFolder reports whether a folder with the given key or name exists.
func (r *Registry) HasFolder(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.folders[model.FolderKey(key)]
	return ok
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Files: len(r.files), Folders: len(r.folders)}
}
