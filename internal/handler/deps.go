package handler

import (
	"context"

	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/registry"
)

// Registry is the subset of *registry.Registry the handlers call.
type Registry interface {
	SaveFile(ctx context.Context, in registry.SaveInput) (*model.FileRecord, error)
	GetFile(id string) (*model.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error
	MoveFile(ctx context.Context, id, target string) (*model.FileRecord, error)
	CreateFolder(ctx context.Context, name, creatorID string) (*model.Folder, error)
	RenameFolder(ctx context.Context, oldKey, newName string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, key string) (int, error)
	ListFolder(key string) ([]*model.FileRecord, error)
	ListFolders() []*model.Folder
	GetFolder(key string) (*model.Folder, error)
	ListAllFiles() []model.FileView
	Search(keyword string) []*model.FileRecord
	Stats() registry.Stats
}

// ActiveFolders tracks the folder each chat user saves into.
type ActiveFolders interface {
	GetActiveFolder(userID string) string
	SetActiveFolder(userID, folder string) (string, error)
	Reset(userID string)
}
