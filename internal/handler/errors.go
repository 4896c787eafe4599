package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophbox/internal/registry"
)

// statusForError maps registry error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// replyForError turns a registry error into the text sent back to the chat.
func replyForError(err error) string {
	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		return "⚠️ " + detail(err, registry.ErrInvalidInput)
	case errors.Is(err, registry.ErrNotFound):
		return "❌ Not found: " + detail(err, registry.ErrNotFound)
	case errors.Is(err, registry.ErrAlreadyExists):
		return "⚠️ Already exists: " + detail(err, registry.ErrAlreadyExists)
	case errors.Is(err, registry.ErrStoreFailure):
		return "⚠️ The change was applied but could not be saved. It may be lost on restart."
	}
	return "❌ Something went wrong. Please try again."
}

// detail strips the sentinel text from a wrapped registry error, leaving the
// context the registry attached to it.
func detail(err, sentinel error) string {
	s := err.Error()
	s = strings.TrimSuffix(s, ": "+sentinel.Error())
	s = strings.TrimPrefix(s, sentinel.Error()+": ")
	return s
}

// errorResponse renders err with its mapped status.
func errorResponse(err error) events.APIGatewayProxyResponse {
	return textResponse(statusForError(err), err.Error())
}

// resultResponse renders the result of a mutation. A store failure still
// carries the applied result, flagged by StoreWarningHeader.
func resultResponse(status int, v any, err error) events.APIGatewayProxyResponse {
	if err == nil {
		return jsonResponse(status, v)
	}
	if errors.Is(err, registry.ErrStoreFailure) {
		resp := jsonResponse(http.StatusInternalServerError, v)
		resp.Headers[StoreWarningHeader] = "write-through failed"
		return resp
	}
	return errorResponse(err)
}
