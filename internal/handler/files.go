package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophbox/internal/logging"
)

// FileHandler serves the /files endpoints.
type FileHandler struct {
	reg       Registry
	jwtSecret string
	logger    logging.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(reg Registry, jwtSecret string, logger logging.Logger) *FileHandler {
	return &FileHandler{reg: reg, jwtSecret: jwtSecret, logger: logger.With("component", "files_api")}
}

// ListFiles handles GET /files
func (h *FileHandler) ListFiles(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(err), nil
	}
	return jsonResponse(http.StatusOK, h.reg.ListAllFiles()), nil
}

// GetFile handles GET /files/{id}
func (h *FileHandler) GetFile(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(err), nil
	}

	id := req.PathParameters["id"]
	if id == "" {
		return textResponse(http.StatusBadRequest, "Missing file ID"), nil
	}

	rec, err := h.reg.GetFile(id)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, rec), nil
}

// DeleteFile handles DELETE /files/{id}
func (h *FileHandler) DeleteFile(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorized(err), nil
	}

	id := req.PathParameters["id"]
	if id == "" {
		return textResponse(http.StatusBadRequest, "Missing file ID"), nil
	}

	err = h.reg.DeleteFile(ctx, id)
	if err != nil {
		requestLogger(h.logger, req).Warn(ctx, "delete file failed", "file_id", id, "user_id", userID, "error", err)
		resp := resultResponse(http.StatusNoContent, nil, err)
		if resp.StatusCode == http.StatusInternalServerError {
			resp.Body = ""
		}
		return resp, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}, nil
}

// MoveFile handles PATCH /files/{id} with body {"folder": "..."}.
func (h *FileHandler) MoveFile(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorized(err), nil
	}

	id := req.PathParameters["id"]
	if id == "" {
		return textResponse(http.StatusBadRequest, "Missing file ID"), nil
	}

	var payload struct {
		Folder string `json:"folder"`
	}
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		return textResponse(http.StatusBadRequest, "Invalid request body"), nil
	}
	if payload.Folder == "" {
		return textResponse(http.StatusBadRequest, "Target folder is required"), nil
	}

	rec, err := h.reg.MoveFile(ctx, id, payload.Folder)
	if err != nil {
		requestLogger(h.logger, req).Warn(ctx, "move file failed", "file_id", id, "user_id", userID, "error", err)
	}
	return resultResponse(http.StatusOK, rec, err), nil
}
