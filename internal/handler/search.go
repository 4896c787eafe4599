package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// SearchHandler handles search requests.
type SearchHandler struct {
	reg       Registry
	jwtSecret string
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(reg Registry, jwtSecret string) *SearchHandler {
	return &SearchHandler{reg: reg, jwtSecret: jwtSecret}
}

// Search handles GET /search. An empty or missing q matches every file.
func (h *SearchHandler) Search(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(err), nil
	}

	files := h.reg.Search(req.QueryStringParameters["q"])
	return jsonResponse(http.StatusOK, files), nil
}
