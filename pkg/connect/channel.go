// Package connect carries assistant commands in from chat platforms and a
// local WebSocket, and sends the replies back.
package connect

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Message is one inbound command.
type Message struct {
	Platform string
	ChatID   string
	From     string
	Text     string
}

// Response is the assistant's answer to a Message.
type Response struct {
	ID      string
	Talent  string
	Text    string
	Success bool
}

// Handler answers a message. It must be safe for concurrent use.
type Handler func(ctx context.Context, msg Message) Response

// Channel is an integration surface like Telegram, Discord or the local
// WebSocket.
type Channel interface {
	Name() string
	// Run delivers messages to handle until ctx is done.
	Run(ctx context.Context, handle Handler) error
}

// NotAuthorized is sent to users missing from a channel's allow list.
const NotAuthorized = "You are not authorized to use this assistant."

// Allow lists the user names or ids permitted on a channel. Matching ignores
// case and a leading "@". An empty list permits everyone.
type Allow []string

// Permits reports whether any of ids is allowed.
func (a Allow) Permits(ids ...string) bool {
	if len(a) == 0 {
		return true
	}
	for _, want := range a {
		want = normalizeID(want)
		for _, id := range ids {
			if id != "" && normalizeID(id) == want {
				return true
			}
		}
	}
	return false
}

func normalizeID(id string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "@")
}

// chunk splits text into pieces of at most limit characters, preferring to
// break after a newline.
func chunk(text string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(text) > limit {
		cut := byteOffset(text, limit)
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" || len(out) == 0 {
		out = append(out, text)
	}
	return out
}

func byteOffset(s string, runes int) int {
	i := 0
	for n := 0; n < runes && i < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
