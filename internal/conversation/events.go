// ABOUTME: Change events published by the conversation service
// ABOUTME: Front-ends subscribe to re-render when messages or send state change

package conversation

import (
	"time"

	"github.com/2389/coven-chat/internal/chat"
)

// AllConversations is the broadcaster key that receives every event.
const AllConversations = "*"

// EventKind names what changed.
type EventKind string

const (
	EventMessageAppended      EventKind = "message_appended"
	EventSendingStarted       EventKind = "sending_started"
	EventSendingFinished      EventKind = "sending_finished"
	EventConversationsChanged EventKind = "conversations_changed"
)

// Event describes one state change.
type Event struct {
	Kind           EventKind     `json:"kind"`
	ConversationID string        `json:"conversation_id,omitempty"`
	Message        *chat.Message `json:"message,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}
