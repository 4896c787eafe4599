package handler_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/registry"
	"github.com/jun/gophbox/internal/session"
	"github.com/jun/gophbox/internal/store"
	"github.com/jun/gophbox/internal/telegram"
)

const testUserID = "test-user-123"

func makeToken(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return signed
}

func makeRequest(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
		Headers: map[string]string{
			"Authorization": "Bearer " + makeToken(testUserID),
			"Content-Type":  "application/json",
		},
		PathParameters: map[string]string{},
	}
}

func newTestRegistry(t *testing.T) (*registry.Registry, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return registry.New(context.Background(), store.New(mem, logging.Discard()), logging.Discard()), mem
}

func newSessions(reg *registry.Registry) *session.ActiveFolders {
	return session.NewActiveFolders(reg)
}

func decodeReply(t *testing.T, resp events.APIGatewayProxyResponse) telegram.Reply {
	t.Helper()
	var r telegram.Reply
	if err := json.Unmarshal([]byte(resp.Body), &r); err != nil {
		t.Fatalf("Failed to unmarshal reply %q: %v", resp.Body, err)
	}
	return r
}
