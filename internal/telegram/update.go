// Package telegram holds the subset of the Bot API that the webhook needs:
// inbound Update payloads and method calls returned as webhook replies.
package telegram

import (
	"strings"

	"github.com/jun/gophbox/internal/model"
)

// SecretHeader carries the secret_token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Message struct {
	MessageID int64        `json:"message_id"`
	From      *User        `json:"from,omitempty"`
	Chat      Chat         `json:"chat"`
	Date      int64        `json:"date"`
	Text      string       `json:"text,omitempty"`
	Caption   string       `json:"caption,omitempty"`
	Document  *Document    `json:"document,omitempty"`
	Photo     []PhotoSize  `json:"photo,omitempty"`
	Video     *Video       `json:"video,omitempty"`
	Audio     *Audio       `json:"audio,omitempty"`
	Voice     *Voice       `json:"voice,omitempty"`
	Entities  []EntityMark `json:"entities,omitempty"`
}

// EntityMark is a MessageEntity; only bot_command entities are inspected.
type EntityMark struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Document struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type Video struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name,omitempty"`
	Duration     int    `json:"duration"`
}

type Audio struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name,omitempty"`
	Title        string `json:"title,omitempty"`
	Duration     int    `json:"duration"`
}

type Voice struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Duration     int    `json:"duration"`
}

// FileEvent is the file carried by a message, reduced to what the registry stores.
type FileEvent struct {
	ID     string
	Handle string
	Name   string
	Kind   model.Kind
}

// File extracts the attached file. Photos resolve to their largest size.
// The second result is false when the message carries no file.
func (m *Message) File() (FileEvent, bool) {
	switch {
	case m.Document != nil:
		return FileEvent{ID: m.Document.FileUniqueID, Handle: m.Document.FileID, Name: m.Document.FileName, Kind: model.KindDocument}, true
	case len(m.Photo) > 0:
		best := m.Photo[0]
		for _, p := range m.Photo[1:] {
			if p.Width*p.Height >= best.Width*best.Height {
				best = p
			}
		}
		return FileEvent{ID: best.FileUniqueID, Handle: best.FileID, Kind: model.KindPhoto}, true
	case m.Video != nil:
		return FileEvent{ID: m.Video.FileUniqueID, Handle: m.Video.FileID, Name: m.Video.FileName, Kind: model.KindVideo}, true
	case m.Audio != nil:
		name := m.Audio.FileName
		if name == "" {
			name = m.Audio.Title
		}
		return FileEvent{ID: m.Audio.FileUniqueID, Handle: m.Audio.FileID, Name: name, Kind: model.KindAudio}, true
	case m.Voice != nil:
		return FileEvent{ID: m.Voice.FileUniqueID, Handle: m.Voice.FileID, Kind: model.KindVoice}, true
	}
	return FileEvent{}, false
}

// SenderID returns the sending user's id as a string, or the chat id for
// anonymous channel posts.
func (m *Message) SenderID() string {
	if m.From != nil {
		return formatID(m.From.ID)
	}
	return formatID(m.Chat.ID)
}

// Command splits "/cmd@bot arg1 arg2" into the lower-cased command name and
// the raw argument string. ok is false for text that is not a command.
func (m *Message) Command() (name, args string, ok bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	head = strings.TrimPrefix(head, "/")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
