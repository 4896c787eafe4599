package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/gophbox/internal/config"
	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/telegram"
)

const (
	testJWTSecret     = "app-test-secret"
	testWebhookSecret = "app-hook-secret"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", testWebhookSecret)

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DevMode = true
	cfg.StoreBackend = config.BackendMemory

	a, err := NewApp(context.Background(), &cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func apiRequest(method, path, body string) events.APIGatewayProxyRequest {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
		Headers:    map[string]string{"Authorization": "Bearer " + signed},
	}
}

func call(t *testing.T, a *App, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	t.Helper()
	resp, err := a.HandleRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleRequest returned error: %v", err)
	}
	return resp
}

func TestHandleRequest_Preflight(t *testing.T) {
	a := newTestApp(t)

	resp := call(t, a, events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS", Path: "/folders"})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "http://localhost:3000" {
		t.Errorf("Unexpected CORS origin: %q", resp.Headers["Access-Control-Allow-Origin"])
	}
}

func TestHandleRequest_NotFound(t *testing.T) {
	a := newTestApp(t)

	resp := call(t, a, apiRequest("GET", "/notes", ""))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleRequest_WebhookThenAPI(t *testing.T) {
	a := newTestApp(t)

	update := telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From:     &telegram.User{ID: 7},
			Chat:     telegram.Chat{ID: 7, Type: "private"},
			Document: &telegram.Document{FileID: "handle", FileUniqueID: "doc1", FileName: "a.pdf"},
		},
	}
	body, _ := json.Marshal(update)
	resp := call(t, a, events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/api/telegram/webhook",
		Body:       string(body),
		Headers:    map[string]string{telegram.SecretHeader: testWebhookSecret},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from webhook, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp = call(t, a, apiRequest("POST", "/api/folders", `{"name":"Work Docs"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp = call(t, a, apiRequest("PATCH", "/files/doc1", `{"folder":"work docs"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from move, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp = call(t, a, apiRequest("GET", "/folders/"+url.PathEscape("work docs")+"/files", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 listing folder, got %d: %s", resp.StatusCode, resp.Body)
	}
	var files []model.FileRecord
	if err := json.Unmarshal([]byte(resp.Body), &files); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(files) != 1 || files[0].ID != "doc1" {
		t.Errorf("Unexpected folder contents: %+v", files)
	}

	resp = call(t, a, apiRequest("GET", "/search", ""))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from search, got %d", resp.StatusCode)
	}

	if err := a.Registry().CheckInvariants(); err != nil {
		t.Errorf("Invariant violated: %v", err)
	}
}

func TestHandleRequest_WebhookRejectsWrongSecret(t *testing.T) {
	a := newTestApp(t)

	resp := call(t, a, events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/telegram/webhook",
		Body:       `{"update_id":1}`,
		Headers:    map[string]string{telegram.SecretHeader: "nope"},
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestSplitPath(t *testing.T) {
	parts, ok := splitPath("/folders/work%20docs/files")
	if !ok || len(parts) != 3 || parts[1] != "work docs" {
		t.Errorf("Unexpected split: %v %v", parts, ok)
	}
	if _, ok := splitPath("/folders//files"); ok {
		t.Error("Empty segments must not route")
	}
}
