package domain

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MaxNicknameLen is the maximum nickname length in characters.
const MaxNicknameLen = 30

// Message is a chat message posted to a room.
type Message struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}

// Probe is the empty payload pushed to notification channels to check
// they are still alive. Clients ignore it.
var Probe = []byte{}

// NewMessage builds a normalized message. It reports false when the
// message is degenerate and must be dropped.
func NewMessage(nickname, content string) (Message, bool) {
	return Message{Nickname: nickname, Content: content}.Normalize()
}

// Normalize trims both fields and truncates the nickname to
// MaxNicknameLen characters without splitting a multi-byte character.
// It reports false if either field is empty after trimming.
func (m Message) Normalize() (Message, bool) {
	nick := strings.TrimSpace(m.Nickname)
	content := strings.TrimSpace(m.Content)
	if nick == "" || content == "" {
		return Message{}, false
	}
	if utf8.RuneCountInString(nick) > MaxNicknameLen {
		nick = strings.TrimSpace(truncateRunes(nick, MaxNicknameLen))
	}
	return Message{Nickname: nick, Content: content}, true
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeMessage deserializes a notification payload into a Message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
