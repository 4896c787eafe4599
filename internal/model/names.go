package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is the type of file, derived from which field of the inbound event was set.
type Kind string

const (
	KindDocument Kind = "document"
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindVoice    Kind = "voice"
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindDocument, KindPhoto, KindVideo, KindAudio, KindVoice}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown file kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDocument, KindPhoto, KindVideo, KindAudio, KindVoice:
		return true
	}
	return false
}

// DefaultName is the display name used when the platform supplies none.
func (k Kind) DefaultName() string {
	switch k {
	case KindDocument:
		return "Document"
	case KindPhoto:
		return "Photo"
	case KindVideo:
		return "Video"
	case KindAudio:
		return "Audio"
	case KindVoice:
		return "Voice Message"
	}
	return "File"
}

// TruncateName trims surrounding space and cuts the name to
// MaxFolderNameLength characters without splitting a rune.
func TruncateName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxFolderNameLength {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:MaxFolderNameLength]))
}

// FolderKey derives the case-insensitive key of a folder name.
func FolderKey(name string) string {
	return strings.ToLower(TruncateName(name))
}
