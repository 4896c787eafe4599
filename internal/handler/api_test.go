package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jun/gophbox/internal/handler"
	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/registry"
)

func seedFile(t *testing.T, reg *registry.Registry, id, name, folder string) {
	t.Helper()
	_, err := reg.SaveFile(context.Background(), registry.SaveInput{
		ID: id, Handle: "h-" + id, RawName: name, Kind: model.KindDocument, TargetFolder: folder,
	})
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
}

func TestFileHandler_ListAndGet(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := handler.NewFileHandler(reg, testJWTSecret, logging.Discard())
	ctx := context.Background()
	seedFile(t, reg, "f1", "a.pdf", "")

	resp, err := h.ListFiles(ctx, makeRequest("GET", "/files", ""))
	if err != nil {
		t.Fatalf("ListFiles returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", resp.StatusCode)
	}
	var views []model.FileView
	if err := json.Unmarshal([]byte(resp.Body), &views); err != nil {
		t.Fatalf("Failed to unmarshal files: %v", err)
	}
	if len(views) != 1 || views[0].FolderName != model.DefaultFolderName {
		t.Errorf("Unexpected files: %+v", views)
	}

	req := makeRequest("GET", "/files/f1", "")
	req.PathParameters["id"] = "f1"
	resp, _ = h.GetFile(ctx, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", resp.StatusCode)
	}
	var rec model.FileRecord
	if err := json.Unmarshal([]byte(resp.Body), &rec); err != nil {
		t.Fatalf("Failed to unmarshal file: %v", err)
	}
	if rec.Handle != "h-f1" {
		t.Errorf("Expected handle 'h-f1', got %q", rec.Handle)
	}

	req.PathParameters["id"] = "missing"
	resp, _ = h.GetFile(ctx, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestFileHandler_Unauthorized(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := handler.NewFileHandler(reg, testJWTSecret, logging.Discard())

	req := makeRequest("GET", "/files", "")
	delete(req.Headers, "Authorization")

	resp, _ := h.ListFiles(context.Background(), req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestFileHandler_MoveAndDelete(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := handler.NewFileHandler(reg, testJWTSecret, logging.Discard())
	ctx := context.Background()
	seedFile(t, reg, "f1", "a.pdf", "")
	if _, err := reg.CreateFolder(ctx, "Work", testUserID); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	req := makeRequest("PATCH", "/files/f1", `{"folder":"Work"}`)
	req.PathParameters["id"] = "f1"
	resp, _ := h.MoveFile(ctx, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", resp.StatusCode, resp.Body)
	}

	req = makeRequest("PATCH", "/files/f1", `{"folder":"nowhere"}`)
	req.PathParameters["id"] = "f1"
	resp, _ = h.MoveFile(ctx, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown folder, got %d", resp.StatusCode)
	}

	req = makeRequest("PATCH", "/files/f1", `{}`)
	req.PathParameters["id"] = "f1"
	resp, _ = h.MoveFile(ctx, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing folder, got %d", resp.StatusCode)
	}

	req = makeRequest("DELETE", "/files/f1", "")
	req.PathParameters["id"] = "f1"
	resp, _ = h.DeleteFile(ctx, req)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}

	resp, _ = h.DeleteFile(ctx, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestFolderHandler_Lifecycle(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := handler.NewFolderHandler(reg, testJWTSecret, logging.Discard())
	ctx := context.Background()

	resp, _ := h.CreateFolder(ctx, makeRequest("POST", "/folders", `{"name":"Movies"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 Created, got %d: %s", resp.StatusCode, resp.Body)
	}
	var folder model.Folder
	if err := json.Unmarshal([]byte(resp.Body), &folder); err != nil {
		t.Fatalf("Failed to unmarshal folder: %v", err)
	}
	if folder.Key != "movies" || folder.CreatorID != testUserID {
		t.Errorf("Unexpected folder: %+v", folder)
	}

	resp, _ = h.CreateFolder(ctx, makeRequest("POST", "/folders", `{"name":"movies"}`))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.StatusCode)
	}
	resp, _ = h.CreateFolder(ctx, makeRequest("POST", "/folders", `{"name":"  "}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	seedFile(t, reg, "m1", "film.mp4", "movies")

	req := makeRequest("PATCH", "/folders/movies", `{"name":"Films"}`)
	req.PathParameters["key"] = "movies"
	resp, _ = h.RenameFolder(ctx, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", resp.StatusCode, resp.Body)
	}

	req = makeRequest("GET", "/folders/films/files", "")
	req.PathParameters["key"] = "films"
	resp, _ = h.ListFolderFiles(ctx, req)
	var files []model.FileRecord
	if err := json.Unmarshal([]byte(resp.Body), &files); err != nil {
		t.Fatalf("Failed to unmarshal files: %v", err)
	}
	if len(files) != 1 || files[0].FolderID != "films" {
		t.Errorf("Unexpected folder files: %+v", files)
	}

	req = makeRequest("DELETE", "/folders/default", "")
	req.PathParameters["key"] = "default"
	resp, _ = h.DeleteFolder(ctx, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 deleting default, got %d", resp.StatusCode)
	}

	req = makeRequest("DELETE", "/folders/films", "")
	req.PathParameters["key"] = "films"
	resp, _ = h.DeleteFolder(ctx, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", resp.StatusCode, resp.Body)
	}
	var result struct {
		Moved int `json:"moved"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if result.Moved != 1 {
		t.Errorf("Expected 1 moved file, got %d", result.Moved)
	}

	resp, _ = h.ListFolders(ctx, makeRequest("GET", "/folders", ""))
	var folders []model.Folder
	if err := json.Unmarshal([]byte(resp.Body), &folders); err != nil {
		t.Fatalf("Failed to unmarshal folders: %v", err)
	}
	if len(folders) != 1 || folders[0].Key != model.DefaultFolderKey {
		t.Errorf("Expected only default folder, got %+v", folders)
	}
}

func TestFolderHandler_StoreFailureWarning(t *testing.T) {
	reg, mem := newTestRegistry(t)
	h := handler.NewFolderHandler(reg, testJWTSecret, logging.Discard())
	mem.FailWrites(errors.New("bucket unavailable"))

	resp, _ := h.CreateFolder(context.Background(), makeRequest("POST", "/folders", `{"name":"Work"}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
	if resp.Headers[handler.StoreWarningHeader] == "" {
		t.Error("Expected store warning header")
	}
	var folder model.Folder
	if err := json.Unmarshal([]byte(resp.Body), &folder); err != nil || folder.Key != "work" {
		t.Errorf("Expected the applied folder in the body, got %q", resp.Body)
	}
	if !reg.HasFolder("work") {
		t.Error("Expected folder to exist in memory")
	}
}

func TestSearchHandler_Search(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := handler.NewSearchHandler(reg, testJWTSecret)
	ctx := context.Background()
	seedFile(t, reg, "f1", "Budget.xlsx", "")
	seedFile(t, reg, "f2", "notes.txt", "")

	tests := []struct {
		query string
		want  int
	}{
		{"budget", 1},
		{"DOCUMENT", 2},
		{"", 2},
		{"nothing", 0},
	}

	for _, tc := range tests {
		req := makeRequest("GET", "/search", "")
		req.QueryStringParameters = map[string]string{"q": tc.query}
		resp, err := h.Search(ctx, req)
		if err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 OK, got %d", resp.StatusCode)
		}
		var files []model.FileRecord
		if err := json.Unmarshal([]byte(resp.Body), &files); err != nil {
			t.Fatalf("Failed to unmarshal results: %v", err)
		}
		if len(files) != tc.want {
			t.Errorf("Search(%q): expected %d results, got %d", tc.query, tc.want, len(files))
		}
	}
}
