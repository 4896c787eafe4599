package telegram

import (
	"strconv"

	"github.com/jun/gophbox/internal/model"
)

// Reply is a Bot API method call. Telegram executes it when it is returned
// as the body of the webhook response.
type Reply struct {
	Method   string `json:"method"`
	ChatID   int64  `json:"chat_id"`
	Text     string `json:"text,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Document string `json:"document,omitempty"`
	Photo    string `json:"photo,omitempty"`
	Video    string `json:"video,omitempty"`
	Audio    string `json:"audio,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

func SendMessage(chatID int64, text string) *Reply {
	return &Reply{Method: "sendMessage", ChatID: chatID, Text: text}
}

// SendFile re-delivers a stored file by its handle using the send method
// matching its kind.
func SendFile(chatID int64, rec *model.FileRecord) *Reply {
	r := &Reply{ChatID: chatID, Caption: "📁 " + rec.DisplayName}
	switch rec.Kind {
	case model.KindPhoto:
		r.Method, r.Photo = "sendPhoto", rec.Handle
	case model.KindVideo:
		r.Method, r.Video = "sendVideo", rec.Handle
	case model.KindAudio:
		r.Method, r.Audio = "sendAudio", rec.Handle
	case model.KindVoice:
		r.Method, r.Voice = "sendVoice", rec.Handle
	default:
		r.Method, r.Document = "sendDocument", rec.Handle
	}
	return r
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
