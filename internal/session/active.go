// Package session keeps per-user conversational state. It lives in memory
// only and is lost on restart.
package session

import (
	"fmt"
	"sync"

	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/registry"
)

// FolderLookup reports whether a folder exists.
type FolderLookup interface {
	HasFolder(key string) bool
}

// ActiveFolders maps a user to the folder new uploads land in.
type ActiveFolders struct {
	mu      sync.RWMutex
	active  map[string]string
	folders FolderLookup
}

func NewActiveFolders(folders FolderLookup) *ActiveFolders {
	return &ActiveFolders{
		active:  make(map[string]string),
		folders: folders,
	}
}

// GetActiveFolder returns the user's active folder key. Users that never chose
// a folder, or whose folder was renamed or deleted since, get the default folder.
func (a *ActiveFolders) GetActiveFolder(userID string) string {
	a.mu.RLock()
	key, ok := a.active[userID]
	a.mu.RUnlock()

	if !ok || !a.folders.HasFolder(key) {
		return model.DefaultFolderKey
	}
	return key
}

// SetActiveFolder selects folder by key or name and returns its key.
func (a *ActiveFolders) SetActiveFolder(userID, folder string) (string, error) {
	key := model.FolderKey(folder)
	if key == "" {
		return "", fmt.Errorf("%w: folder name is empty", registry.ErrInvalidInput)
	}
	if !a.folders.HasFolder(key) {
		return "", fmt.Errorf("folder %q: %w", folder, registry.ErrNotFound)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.active[userID] = key
	return key, nil
}

// Reset forgets the user's choice.
func (a *ActiveFolders) Reset(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.active, userID)
}
