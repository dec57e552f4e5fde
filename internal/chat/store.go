// ABOUTME: In-memory conversation store with the sample/live display overlay
// ABOUTME: Owns conversation order, the active conversation and append-only histories

package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/2389/coven-chat/internal/ident"
)

// Store holds every live conversation for the session. All methods are safe
// for concurrent use; reads return copies.
type Store struct {
	mu            sync.RWMutex
	conversations []*Conversation // newest first
	activeID      string
	sampleView    bool
	sample        []Conversation

	ids    ident.Generator
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs sets the identifier generator.
func WithIDs(ids ident.Generator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithLogger sets the logger. Pass nil for default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSampleView starts the store with the sample overlay enabled.
func WithSampleView(enabled bool) Option {
	return func(s *Store) { s.sampleView = enabled }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ids:    ident.Default,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "chat_store")
	s.sample = sampleConversations(s.now())
	if s.sampleView {
		s.activeID = s.sample[0].ID
	}
	return s
}

// CreateConversation inserts an empty conversation at the front, makes it
// active and returns its id.
func (s *Store) CreateConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() string {
	if s.showingSampleLocked() {
		s.sampleView = false
		s.logger.Debug("sample overlay cleared by new conversation")
	}

	now := s.now()
	conv := &Conversation{
		ID:        s.ids.New(),
		Title:     PlaceholderTitle,
		CreatedAt: now,
	}
	s.conversations = append([]*Conversation{conv}, s.conversations...)
	s.activeID = conv.ID

	s.logger.Debug("conversation created", "conversation_id", conv.ID)
	return conv.ID
}

// SelectConversation makes id active if it is visible. It reports whether
// the selection changed anything.
func (s *Store) SelectConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.visibleLocked() {
		if c.ID == id {
			s.activeID = id
			return true
		}
	}
	return false
}

// DeleteConversation removes a live conversation. Deleting the active one
// clears the active id. It is a no-op while the sample overlay is showing.
func (s *Store) DeleteConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.showingSampleLocked() {
		return false
	}

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}

	s.logger.Debug("conversation deleted", "conversation_id", id)
	return true
}

// AppendMessage appends msg to a live conversation and returns the stored
// message. A missing id or timestamp is filled in, a timestamp older than the
// previous message is raised to it, and a RetrySource on a non-error message
// is dropped. The first message sets the title when it is a user message.
// Unknown conversation ids are ignored.
func (s *Store) AppendMessage(conversationID string, msg Message) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(conversationID)
	if idx < 0 {
		s.logger.Debug("append to unknown conversation ignored", "conversation_id", conversationID)
		return Message{}, false
	}
	conv := s.conversations[idx]

	if msg.ID == "" || hasMessage(conv, msg.ID) {
		msg.ID = s.ids.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	if n := len(conv.Messages); n > 0 {
		if last := conv.Messages[n-1].Timestamp; msg.Timestamp.Before(last) {
			msg.Timestamp = last
		}
	}
	if msg.Role != RoleError {
		msg.RetrySource = ""
	}

	if len(conv.Messages) == 0 && msg.Role == RoleUser {
		conv.Title = TruncateTitle(msg.Content)
	}
	conv.Messages = append(conv.Messages, msg)
	return msg, true
}

// VisibleConversations returns the sample dataset while the overlay is
// showing, otherwise the live conversations, newest first.
func (s *Store) VisibleConversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visible := s.visibleLocked()
	out := make([]Conversation, len(visible))
	for i, c := range visible {
		out[i] = c.clone()
	}
	return out
}

// Conversation looks up a visible conversation.
func (s *Store) Conversation(id string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.visibleLocked() {
		if c.ID == id {
			return c.clone(), true
		}
	}
	return Conversation{}, false
}

// ActiveConversation returns the active conversation, if any.
func (s *Store) ActiveConversation() (Conversation, bool) {
	s.mu.RLock()
	id := s.activeID
	s.mu.RUnlock()
	if id == "" {
		return Conversation{}, false
	}
	return s.Conversation(id)
}

// ActiveID returns the active conversation id, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// FindMessage looks a message up across visible conversations and returns it
// with its conversation id.
func (s *Store) FindMessage(id string) (string, Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.visibleLocked() {
		for _, m := range c.Messages {
			if m.ID == id {
				return c.ID, m, true
			}
		}
	}
	return "", Message{}, false
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// EnsureLiveTarget resolves the conversation a send should go to: the
// explicit id when it names a live conversation, else the active live
// conversation. Otherwise, and always while the sample overlay is showing, a
// new live conversation is created (clearing the overlay) and returned.
func (s *Store) EnsureLiveTarget(explicitID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.showingSampleLocked() {
		if explicitID != "" && s.indexLocked(explicitID) >= 0 {
			return explicitID
		}
		if s.activeID != "" && s.indexLocked(s.activeID) >= 0 {
			return s.activeID
		}
	}
	return s.createLocked()
}

// EnableSampleView turns the overlay on. The sample dataset only becomes
// visible while there are no live conversations; in that case the first
// sample conversation becomes active.
func (s *Store) EnableSampleView() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sampleView = true
	if s.indexLocked(s.activeID) < 0 && s.showingSampleLocked() {
		s.activeID = s.sample[0].ID
	}
}

// DisableSampleView turns the overlay off and activates the newest live
// conversation, if any.
func (s *Store) DisableSampleView() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sampleView = false
	s.activeID = ""
	if len(s.conversations) > 0 {
		s.activeID = s.conversations[0].ID
	}
}

// SampleViewEnabled reports whether the overlay flag is set.
func (s *Store) SampleViewEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleView
}

// ShowingSample reports whether reads are currently served from the sample
// dataset.
func (s *Store) ShowingSample() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showingSampleLocked()
}

func (s *Store) showingSampleLocked() bool {
	return s.sampleView && len(s.conversations) == 0
}

func (s *Store) visibleLocked() []*Conversation {
	if s.showingSampleLocked() {
		out := make([]*Conversation, len(s.sample))
		for i := range s.sample {
			out[i] = &s.sample[i]
		}
		return out
	}
	return s.conversations
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func hasMessage(conv *Conversation, id string) bool {
	for _, m := range conv.Messages {
		if m.ID == id {
			return true
		}
	}
	return false
}
