package model

import (
	"time"
)

// DefaultFolderKey is the key of the folder that always exists and receives
// files whose target folder is unknown.
const DefaultFolderKey = "default"

// DefaultFolderName is the display name of the default folder.
const DefaultFolderName = "Default"

// MaxFolderNameLength is the maximum length of a folder display name, in characters.
const MaxFolderNameLength = 50

// FileRecord is one stored file reference. The bytes stay on the messaging
// platform; Handle is the token the platform uses to re-deliver them.
type FileRecord struct {
	ID          string     `json:"id"`
	Handle      string     `json:"handle"`
	DisplayName string     `json:"name"`
	Kind        Kind       `json:"type"`
	FolderID    string     `json:"folder"`
	OwnerID     string     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	MovedAt     *time.Time `json:"moved_at,omitempty"`
}

// Folder is a named, ordered grouping of file ids.
type Folder struct {
	Key         string    `json:"key"`
	DisplayName string    `json:"name"`
	Members     []string  `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
	CreatorID   string    `json:"created_by,omitempty"`
}

// FileView is a FileRecord with its folder's display name resolved.
type FileView struct {
	FileRecord
	FolderName string `json:"folder_name"`
}

// FileTable maps file id to record.
type FileTable map[string]*FileRecord

// FolderTable maps folder key to folder.
type FolderTable map[string]*Folder

// Clone returns a deep copy of the record.
func (f *FileRecord) Clone() *FileRecord {
	c := *f
	if f.MovedAt != nil {
		t := *f.MovedAt
		c.MovedAt = &t
	}
	return &c
}

// Clone returns a deep copy of the folder.
func (f *Folder) Clone() *Folder {
	c := *f
	c.Members = append([]string(nil), f.Members...)
	return &c
}

// HasMember reports whether id is listed in the folder.
func (f *Folder) HasMember(id string) bool {
	for _, m := range f.Members {
		if m == id {
			return true
		}
	}
	return false
}

// AddMember appends id unless it is already present.
func (f *Folder) AddMember(id string) bool {
	if f.HasMember(id) {
		return false
	}
	f.Members = append(f.Members, id)
	return true
}

// RemoveMember drops every occurrence of id, keeping the order of the rest.
func (f *Folder) RemoveMember(id string) bool {
	kept := f.Members[:0]
	removed := false
	for _, m := range f.Members {
		if m == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	f.Members = kept
	return removed
}

// NewDefaultFolder builds the distinguished default folder.
func NewDefaultFolder(now time.Time) *Folder {
	return &Folder{
		Key:         DefaultFolderKey,
		DisplayName: DefaultFolderName,
		Members:     []string{},
		CreatedAt:   now,
		CreatorID:   "system",
	}
}
