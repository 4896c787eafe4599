package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
)

// FolderHandler serves the /folders endpoints.
type FolderHandler struct {
	reg       Registry
	jwtSecret string
	logger    logging.Logger
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(reg Registry, jwtSecret string, logger logging.Logger) *FolderHandler {
	return &FolderHandler{reg: reg, jwtSecret: jwtSecret, logger: logger.With("component", "folders_api")}
}

type folderPayload struct {
	Name string `json:"name"`
}

func parseFolderPayload(body string) (folderPayload, bool) {
	var p folderPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return p, false
	}
	return p, true
}

// ListFolders handles GET /folders
func (h *FolderHandler) ListFolders(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(err), nil
	}
	return jsonResponse(http.StatusOK, h.reg.ListFolders()), nil
}

// CreateFolder handles POST /folders
func (h *FolderHandler) CreateFolder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorized(err), nil
	}

	payload, ok := parseFolderPayload(req.Body)
	if !ok {
		return textResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	folder, err := h.reg.CreateFolder(ctx, payload.Name, userID)
	if err != nil {
		requestLogger(h.logger, req).Warn(ctx, "create folder failed", "name", payload.Name, "user_id", userID, "error", err)
	}
	return resultResponse(http.StatusCreated, folder, err), nil
}

// ListFolderFiles handles GET /folders/{key}/files
func (h *FolderHandler) ListFolderFiles(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(err), nil
	}

	files, err := h.reg.ListFolder(req.PathParameters["key"])
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, files), nil
}

// RenameFolder handles PATCH /folders/{key}
func (h *FolderHandler) RenameFolder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorized(err), nil
	}

	payload, ok := parseFolderPayload(req.Body)
	if !ok {
		return textResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	key := req.PathParameters["key"]
	folder, err := h.reg.RenameFolder(ctx, key, payload.Name)
	if err != nil {
		requestLogger(h.logger, req).Warn(ctx, "rename folder failed", "folder", key, "user_id", userID, "error", err)
	}
	return resultResponse(http.StatusOK, folder, err), nil
}

// DeleteFolder handles DELETE /folders/{key}. Files in the folder move to
// the default folder.
func (h *FolderHandler) DeleteFolder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorized(err), nil
	}

	key := req.PathParameters["key"]
	moved, err := h.reg.DeleteFolder(ctx, key)
	if err != nil {
		requestLogger(h.logger, req).Warn(ctx, "delete folder failed", "folder", key, "user_id", userID, "error", err)
	}
	return resultResponse(http.StatusOK, map[string]any{
		"moved":       moved,
		"moved_to":    model.DefaultFolderKey,
		"deleted_key": model.FolderKey(key),
	}, err), nil
}
