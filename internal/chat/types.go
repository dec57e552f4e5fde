// ABOUTME: Message and conversation types for the in-memory chat store
// ABOUTME: Includes roles, retry metadata and the title truncation rule

package chat

import (
	"time"
	"unicode/utf8"
)

// Role tags who a message came from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

const (
	// PlaceholderTitle is the title of a conversation with no user message yet.
	PlaceholderTitle = "New Conversation"
	// TitleMaxRunes bounds conversation titles derived from the first message.
	TitleMaxRunes = 32
	// TitleEllipsis marks a truncated title.
	TitleEllipsis = "..."
)

// Message is one turn in a conversation. Messages are never mutated once
// appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// RetrySource holds the original text of a failed send. Only error
	// messages carry it.
	RetrySource string `json:"retry_source,omitempty"`
}

// Retryable reports whether the message offers a retry.
func (m Message) Retryable() bool {
	return m.Role == RoleError && m.RetrySource != ""
}

// Conversation is a titled, append-only history of messages.
type Conversation struct {
	ID        string
	Title     string
	Messages  []Message
	CreatedAt time.Time
}

// LastActivity returns the timestamp of the newest message, or CreatedAt.
func (c Conversation) LastActivity() time.Time {
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].Timestamp
	}
	return c.CreatedAt
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// TruncateTitle bounds text to TitleMaxRunes. Longer text keeps exactly
// TitleMaxRunes runes followed by TitleEllipsis.
func TruncateTitle(text string) string {
	if utf8.RuneCountInString(text) <= TitleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:TitleMaxRunes]) + TitleEllipsis
}
