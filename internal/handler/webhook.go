package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/telegram"
)

// DefaultListLimit caps how many entries a listing reply shows.
const DefaultListLimit = 50

// WebhookHandler serves Telegram webhook updates. Each reply is returned in
// the response body as a Bot API method call, so handling an update never
// calls out to Telegram.
type WebhookHandler struct {
	reg       Registry
	sessions  ActiveFolders
	secret    string
	verify    bool
	listLimit int
	logger    logging.Logger
}

// NewWebhookHandler creates a WebhookHandler. With verify set, every update
// must carry secret in the X-Telegram-Bot-Api-Secret-Token header; an empty
// secret then rejects everything.
func NewWebhookHandler(reg Registry, sessions ActiveFolders, secret string, verify bool, listLimit int, logger logging.Logger) *WebhookHandler {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &WebhookHandler{
		reg:       reg,
		sessions:  sessions,
		secret:    secret,
		verify:    verify,
		listLimit: listLimit,
		logger:    logger.With("component", "webhook"),
	}
}

// Handle handles POST /telegram/webhook
func (h *WebhookHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := requestLogger(h.logger, req)

	if h.verify {
		got := header(req, telegram.SecretHeader)
		if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			log.Warn(ctx, "rejected webhook call with bad secret token")
			return textResponse(http.StatusForbidden, "Forbidden"), nil
		}
	}

	var update telegram.Update
	if err := json.Unmarshal([]byte(req.Body), &update); err != nil {
		return textResponse(http.StatusBadRequest, "Invalid update body"), nil
	}

	msg := update.Message
	if msg == nil {
		log.Debug(ctx, "ignoring update without message", "update_id", update.UpdateID)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}

	reply := h.dispatch(ctx, log.With("user_id", msg.SenderID(), "update_id", update.UpdateID), msg)
	return jsonResponse(http.StatusOK, reply), nil
}

func (h *WebhookHandler) dispatch(ctx context.Context, log logging.Logger, msg *telegram.Message) *telegram.Reply {
	chatID := msg.Chat.ID
	user := msg.SenderID()

	if ev, ok := msg.File(); ok {
		return telegram.SendMessage(chatID, h.saveFile(ctx, log, user, ev))
	}

	name, args, ok := msg.Command()
	if !ok {
		return telegram.SendMessage(chatID, "Please send a file (document, photo, video, audio, or voice).\nSend /help for the list of commands.")
	}
	log.Debug(ctx, "command received", "command", name)

	switch name {
	case "start":
		h.sessions.Reset(user)
		return telegram.SendMessage(chatID, helpText)
	case "help":
		return telegram.SendMessage(chatID, helpText)
	case "get":
		return h.getFile(chatID, args)
	}

	var text string
	switch name {
	case "list":
		text = h.listFolder(user, args)
	case "all":
		text = h.listAll()
	case "delete":
		text = h.deleteFile(ctx, args)
	case "folders":
		text = h.listFolders(user)
	case "newfolder":
		text = h.createFolder(ctx, user, args)
	case "folder":
		text = h.setActiveFolder(user, args)
	case "current":
		text = h.currentFolder(user)
	case "move":
		text = h.moveFile(ctx, args)
	case "renamefolder":
		text = h.renameFolder(ctx, args)
	case "deletefolder":
		text = h.deleteFolder(ctx, args)
	case "search":
		text = h.search(args)
	case "stats":
		text = h.stats()
	default:
		text = "Unknown command. Send /help for the list of commands."
	}
	return telegram.SendMessage(chatID, text)
}
