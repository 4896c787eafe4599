package registry

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jun/gophbox/internal/model"
)

// CheckInvariants verifies the registry against its consistency rules and
// returns the first violation found.
func (r *Registry) CheckInvariants() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return checkInvariants(r.files, r.folders)
}

func checkInvariants(files model.FileTable, folders model.FolderTable) error {
	if _, ok := folders[model.DefaultFolderKey]; !ok {
		return fmt.Errorf("default folder is missing")
	}

	for key, f := range folders {
		if f.Key != key {
			return fmt.Errorf("folder stored under %q has key %q", key, f.Key)
		}
		if model.FolderKey(key) != key {
			return fmt.Errorf("folder key %q is not normalized", key)
		}
		seen := make(map[string]struct{}, len(f.Members))
		for _, id := range f.Members {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("folder %q lists file %q twice", key, id)
			}
			seen[id] = struct{}{}
			rec, ok := files[id]
			if !ok {
				return fmt.Errorf("folder %q lists unknown file %q", key, id)
			}
			if rec.FolderID != key {
				return fmt.Errorf("folder %q lists file %q which belongs to %q", key, id, rec.FolderID)
			}
		}
	}

	for id, rec := range files {
		if rec.ID != id {
			return fmt.Errorf("file stored under %q has id %q", id, rec.ID)
		}
		f, ok := folders[rec.FolderID]
		if !ok {
			return fmt.Errorf("file %q points at unknown folder %q", id, rec.FolderID)
		}
		if !f.HasMember(id) {
			return fmt.Errorf("file %q is missing from folder %q", id, rec.FolderID)
		}
	}
	return nil
}

// repair brings freshly loaded tables back in line with the invariants. The
// file side is authoritative: a record's folder decides its membership.
// It returns the (possibly rebuilt) folder table and which tables changed.
func repair(files model.FileTable, folders model.FolderTable, now time.Time) (model.FolderTable, touched) {
	var t touched

	keys := slices.Sorted(maps.Keys(folders))

	out := make(model.FolderTable, len(folders)+1)
	for _, k := range keys {
		f := folders[k]
		key := model.FolderKey(k)
		if key == "" {
			t |= touchFolders
			continue
		}
		if existing, ok := out[key]; ok {
			for _, id := range f.Members {
				existing.AddMember(id)
			}
			t |= touchFolders
			continue
		}
		if key != k || f.Key != key {
			t |= touchFolders
		}
		f.Key = key
		if f.DisplayName == "" {
			f.DisplayName = k
			t |= touchFolders
		}
		out[key] = f
	}
	if _, ok := out[model.DefaultFolderKey]; !ok {
		out[model.DefaultFolderKey] = model.NewDefaultFolder(now)
		t |= touchFolders
	}

	for id, rec := range files {
		if rec.ID != id {
			rec.ID = id
			t |= touchFiles
		}
		if !rec.Kind.Valid() {
			rec.Kind = model.KindDocument
			t |= touchFiles
		}
		if key := model.FolderKey(rec.FolderID); key != rec.FolderID {
			rec.FolderID = key
			t |= touchFiles
		}
		if _, ok := out[rec.FolderID]; !ok {
			rec.FolderID = model.DefaultFolderKey
			t |= touchFiles
		}
	}

	seen := make(map[string]struct{}, len(files))
	for _, k := range slices.Sorted(maps.Keys(out)) {
		f := out[k]
		kept := make([]string, 0, len(f.Members))
		for _, id := range f.Members {
			rec, ok := files[id]
			if !ok || rec.FolderID != k {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			kept = append(kept, id)
		}
		if len(kept) != len(f.Members) {
			t |= touchFolders
		}
		f.Members = kept
	}

	for _, rec := range sortedRecords(files) {
		if out[rec.FolderID].AddMember(rec.ID) {
			t |= touchFolders
		}
	}
	return out, t
}
