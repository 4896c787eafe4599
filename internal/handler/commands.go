package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/registry"
	"github.com/jun/gophbox/internal/telegram"
)

const helpText = `📁 File Saver Bot

Send me any file (document, photo, video, audio, voice).
I'll keep a reference to it in your active folder.

Files:
/list [folder] - Show files in a folder
/all - Show every saved file
/get <id> - Download a file by ID
/delete <id> - Remove a file from the list
/move <id> <folder> - Move a file to another folder
/search <keyword> - Find files by name, type or folder

Folders:
/folders - Show all folders
/newfolder <name> - Create a folder
/folder <name> - Save new files into a folder
/current - Show the active folder
/renamefolder <old> | <new> - Rename a folder
/deletefolder <name> - Delete a folder, its files move to Default
/stats - Show totals`

// applied appends the store warning when a mutation succeeded in memory only.
func applied(text string, err error) string {
	if err != nil {
		return text + "\n\n" + replyForError(err)
	}
	return text
}

// failed reports whether err means the mutation was not applied.
func failed(err error) bool {
	return err != nil && !errors.Is(err, registry.ErrStoreFailure)
}

func (h *WebhookHandler) folderName(key string) string {
	if f, err := h.reg.GetFolder(key); err == nil {
		return f.DisplayName
	}
	return key
}

func (h *WebhookHandler) saveFile(ctx context.Context, log logging.Logger, user string, ev telegram.FileEvent) string {
	rec, err := h.reg.SaveFile(ctx, registry.SaveInput{
		ID:           ev.ID,
		Handle:       ev.Handle,
		RawName:      ev.Name,
		Kind:         ev.Kind,
		OwnerID:      user,
		TargetFolder: h.sessions.GetActiveFolder(user),
	})
	if failed(err) {
		log.Warn(ctx, "save rejected", "error", err)
		return replyForError(err)
	}
	return applied(fmt.Sprintf("✅ File saved!\n\n📝 Name: %s\n🔑 ID: %s\n💾 Type: %s\n📁 Folder: %s",
		rec.DisplayName, rec.ID, rec.Kind, h.folderName(rec.FolderID)), err)
}

func (h *WebhookHandler) getFile(chatID int64, args string) *telegram.Reply {
	id, _, _ := strings.Cut(args, " ")
	if id == "" {
		return telegram.SendMessage(chatID, "Usage: /get <file_id>\nUse /list to see IDs.")
	}
	rec, err := h.reg.GetFile(id)
	if err != nil {
		return telegram.SendMessage(chatID, replyForError(err))
	}
	return telegram.SendFile(chatID, rec)
}

func (h *WebhookHandler) deleteFile(ctx context.Context, args string) string {
	id, _, _ := strings.Cut(args, " ")
	if id == "" {
		return "Usage: /delete <file_id>"
	}
	err := h.reg.DeleteFile(ctx, id)
	if failed(err) {
		return replyForError(err)
	}
	return applied("✅ File removed from list.", err)
}

// truncated renders entries, cutting the listing at the handler's limit.
func (h *WebhookHandler) truncated(title string, entries []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	shown := min(len(entries), h.listLimit)
	for _, e := range entries[:shown] {
		b.WriteString(e)
		b.WriteString("\n")
	}
	if rest := len(entries) - shown; rest > 0 {
		fmt.Fprintf(&b, "… and %d more\n", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

func fileEntry(i int, rec *model.FileRecord, folder string) string {
	if folder != "" {
		return fmt.Sprintf("%d. %s [%s]\n   ID: %s", i, rec.DisplayName, folder, rec.ID)
	}
	return fmt.Sprintf("%d. %s\n   ID: %s", i, rec.DisplayName, rec.ID)
}

func (h *WebhookHandler) listFolder(user, args string) string {
	key := args
	if key == "" {
		key = h.sessions.GetActiveFolder(user)
	}
	f, err := h.reg.GetFolder(key)
	if err != nil {
		return replyForError(err)
	}
	recs, err := h.reg.ListFolder(f.Key)
	if err != nil {
		return replyForError(err)
	}
	if len(recs) == 0 {
		return fmt.Sprintf("📭 No files in %s yet.", f.DisplayName)
	}
	entries := make([]string, len(recs))
	for i, rec := range recs {
		entries[i] = fileEntry(i+1, rec, "")
	}
	return h.truncated(fmt.Sprintf("📂 %s (%d files):", f.DisplayName, len(recs)), entries)
}

func (h *WebhookHandler) listAll() string {
	views := h.reg.ListAllFiles()
	if len(views) == 0 {
		return "📭 No files saved yet."
	}
	entries := make([]string, len(views))
	for i := range views {
		entries[i] = fileEntry(i+1, &views[i].FileRecord, views[i].FolderName)
	}
	return h.truncated(fmt.Sprintf("📂 Saved files (%d):", len(views)), entries)
}

func (h *WebhookHandler) search(args string) string {
	if args == "" {
		return "Usage: /search <keyword>"
	}
	recs := h.reg.Search(args)
	if len(recs) == 0 {
		return fmt.Sprintf("🔍 Nothing matches %q.", args)
	}
	entries := make([]string, len(recs))
	for i, rec := range recs {
		entries[i] = fileEntry(i+1, rec, h.folderName(rec.FolderID))
	}
	return h.truncated(fmt.Sprintf("🔍 %d result(s) for %q:", len(recs), args), entries)
}

func (h *WebhookHandler) listFolders(user string) string {
	active := h.sessions.GetActiveFolder(user)
	folders := h.reg.ListFolders()
	entries := make([]string, len(folders))
	for i, f := range folders {
		marker := "•"
		if f.Key == active {
			marker = "👉"
		}
		entries[i] = fmt.Sprintf("%s %s (%d files)", marker, f.DisplayName, len(f.Members))
	}
	return h.truncated("📁 Folders:", entries)
}

func (h *WebhookHandler) createFolder(ctx context.Context, user, args string) string {
	if args == "" {
		return "Usage: /newfolder <name>"
	}
	f, err := h.reg.CreateFolder(ctx, args, user)
	if failed(err) {
		return replyForError(err)
	}
	return applied(fmt.Sprintf("✅ Folder %q created.\nUse /folder %s to save new files there.", f.DisplayName, f.DisplayName), err)
}

func (h *WebhookHandler) setActiveFolder(user, args string) string {
	if args == "" {
		return "Usage: /folder <name>"
	}
	key, err := h.sessions.SetActiveFolder(user, args)
	if err != nil {
		return replyForError(err)
	}
	return fmt.Sprintf("📂 Active folder: %s\nNew files will be saved here.", h.folderName(key))
}

func (h *WebhookHandler) currentFolder(user string) string {
	return fmt.Sprintf("📂 Active folder: %s", h.folderName(h.sessions.GetActiveFolder(user)))
}

func (h *WebhookHandler) moveFile(ctx context.Context, args string) string {
	id, folder, _ := strings.Cut(args, " ")
	folder = strings.TrimSpace(folder)
	if id == "" || folder == "" {
		return "Usage: /move <file_id> <folder>"
	}
	rec, err := h.reg.MoveFile(ctx, id, folder)
	if failed(err) {
		return replyForError(err)
	}
	return applied(fmt.Sprintf("✅ Moved %s to %s.", rec.DisplayName, h.folderName(rec.FolderID)), err)
}

// renameArgs accepts "old name | new name" or exactly two single-word names.
func renameArgs(args string) (string, string, bool) {
	if before, after, ok := strings.Cut(args, "|"); ok {
		oldName, newName := strings.TrimSpace(before), strings.TrimSpace(after)
		return oldName, newName, oldName != "" && newName != ""
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func (h *WebhookHandler) renameFolder(ctx context.Context, args string) string {
	oldName, newName, ok := renameArgs(args)
	if !ok {
		return "Usage: /renamefolder <old> | <new>"
	}
	f, err := h.reg.RenameFolder(ctx, oldName, newName)
	if failed(err) {
		return replyForError(err)
	}
	return applied(fmt.Sprintf("✅ Folder renamed to %s.", f.DisplayName), err)
}

func (h *WebhookHandler) deleteFolder(ctx context.Context, args string) string {
	if args == "" {
		return "Usage: /deletefolder <name>"
	}
	moved, err := h.reg.DeleteFolder(ctx, args)
	if failed(err) {
		return replyForError(err)
	}
	return applied(fmt.Sprintf("🗑 Folder deleted. %d file(s) moved to %s.", moved, model.DefaultFolderName), err)
}

func (h *WebhookHandler) stats() string {
	s := h.reg.Stats()
	return fmt.Sprintf("📊 %d file(s) in %d folder(s).", s.Files, s.Folders)
}
