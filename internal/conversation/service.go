// ABOUTME: Send pipeline that records user messages, calls the agent and records the reply
// ABOUTME: Enforces a single in-flight call and turns every failure into an error message

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389/coven-chat/internal/agent"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/metrics"
)

// NetworkErrorText is shown when the agent could not be reached at all.
const NetworkErrorText = "A network error occurred. Please check your connection and try again."

var (
	// ErrEmptyMessage is returned when the submitted text is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight is returned while another agent call is outstanding.
	ErrSendInFlight = errors.New("a message is already being sent")
	// ErrNotRetryable is returned when a message offers no retry.
	ErrNotRetryable = errors.New("message is not retryable")
)

// SendResult describes one completed submission.
type SendResult struct {
	ConversationID string
	UserMessage    chat.Message
	Reply          chat.Message
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout bounds each agent call. Zero means no deadline beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithBroadcaster publishes change events to b instead of a private broadcaster.
func WithBroadcaster(b *EventBroadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service is the send pipeline. It is Idle until Submit claims the in-flight
// flag, and returns to Idle once the reply or error message is recorded.
type Service struct {
	store       *chat.Store
	caller      agent.Caller
	broadcaster *EventBroadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
	timeout     time.Duration

	sending atomic.Bool

	mu          sync.Mutex
	draft       string
	activeAgent string
}

// New creates a Service over store that sends through caller.
func New(store *chat.Store, caller agent.Caller, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store,
		caller: caller,
		logger: logger.With("component", "conversation"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.broadcaster == nil {
		s.broadcaster = NewEventBroadcaster(logger)
	}
	s.metrics.SetConversations(store.Len())
	return s
}

// Store returns the underlying conversation store.
func (s *Service) Store() *chat.Store {
	return s.store
}

// Broadcaster returns the event broadcaster the service publishes to.
func (s *Service) Broadcaster() *EventBroadcaster {
	return s.broadcaster
}

// IsSending reports whether an agent call is outstanding.
func (s *Service) IsSending() bool {
	return s.sending.Load()
}

// ActiveAgent returns the id of the agent currently being called, or "".
func (s *Service) ActiveAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAgent
}

// Draft returns the unsent input text.
func (s *Service) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the unsent input text.
func (s *Service) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Submit sends text to the agent and records both sides of the exchange in
// conversationID, or in the active conversation when that id is not live.
// Blank text and submissions made while another call is outstanding are
// rejected without touching the store. Agent failures are not errors: they
// come back as an error-role Reply that carries the text for retry.
func (s *Service) Submit(ctx context.Context, text, conversationID string) (*SendResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.metrics.ObserveSend(metrics.OutcomeRejectedEmpty)
		return nil, ErrEmptyMessage
	}
	if !s.sending.CompareAndSwap(false, true) {
		s.metrics.ObserveSend(metrics.OutcomeRejectedBusy)
		s.logger.Debug("submit rejected, send in flight")
		return nil, ErrSendInFlight
	}

	targetID := s.store.EnsureLiveTarget(conversationID)
	defer s.finish(targetID)

	userMsg, ok := s.store.AppendMessage(targetID, chat.Message{
		Role:      chat.RoleUser,
		Content:   trimmed,
		Timestamp: s.now(),
	})
	if !ok {
		// Only possible if the target was deleted between resolve and append.
		return nil, fmt.Errorf("conversation %s disappeared before send", targetID)
	}
	s.conversationsChanged(targetID)
	s.publish(EventMessageAppended, targetID, &userMsg)

	s.mu.Lock()
	s.draft = ""
	s.activeAgent = agent.AgentID
	s.mu.Unlock()
	s.metrics.SetInFlight(true)
	s.publish(EventSendingStarted, targetID, nil)

	s.logger.Debug("user message recorded",
		"conversation_id", targetID,
		"message_id", userMsg.ID)

	reply, outcome := s.dispatch(ctx, trimmed)
	s.metrics.ObserveSend(outcome)

	stored, ok := s.store.AppendMessage(targetID, reply)
	if !ok {
		s.logger.Warn("conversation deleted before reply arrived",
			"conversation_id", targetID,
			"outcome", outcome)
		stored = reply
	} else {
		s.publish(EventMessageAppended, targetID, &stored)
	}

	s.logger.Debug("send completed",
		"conversation_id", targetID,
		"outcome", outcome)

	return &SendResult{
		ConversationID: targetID,
		UserMessage:    userMsg,
		Reply:          stored,
	}, nil
}

// Retry re-submits the text of a failed send to the active conversation.
func (s *Service) Retry(ctx context.Context, source string) (*SendResult, error) {
	return s.Submit(ctx, source, "")
}

// RetryMessage re-submits the retry source carried by the error message with
// the given id.
func (s *Service) RetryMessage(ctx context.Context, messageID string) (*SendResult, error) {
	_, msg, ok := s.store.FindMessage(messageID)
	if !ok || !msg.Retryable() {
		return nil, ErrNotRetryable
	}
	return s.Retry(ctx, msg.RetrySource)
}

// NewConversation creates an empty conversation and makes it active.
func (s *Service) NewConversation() string {
	id := s.store.CreateConversation()
	s.conversationsChanged(id)
	return id
}

// SelectConversation makes id the active conversation.
func (s *Service) SelectConversation(id string) bool {
	if !s.store.SelectConversation(id) {
		return false
	}
	s.conversationsChanged(id)
	return true
}

// DeleteConversation removes a live conversation.
func (s *Service) DeleteConversation(id string) bool {
	if !s.store.DeleteConversation(id) {
		return false
	}
	s.conversationsChanged(id)
	return true
}

// SetSampleView toggles the sample data overlay.
func (s *Service) SetSampleView(enabled bool) {
	if enabled {
		s.store.EnableSampleView()
	} else {
		s.store.DisableSampleView()
	}
	s.conversationsChanged("")
}

// Subscribe forwards to the broadcaster. Use AllConversations to receive
// every event.
func (s *Service) Subscribe(ctx context.Context, key string) (<-chan *Event, string) {
	return s.broadcaster.Subscribe(ctx, key)
}

// dispatch calls the agent and converts the outcome into the message to
// record. It never fails.
func (s *Service) dispatch(ctx context.Context, text string) (chat.Message, string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.call(ctx, text)
	s.metrics.ObserveCall(time.Since(start))

	switch {
	case err != nil:
		s.logger.Warn("agent call failed", "error", err)
		return s.errorMessage(NetworkErrorText, text), metrics.OutcomeTransportError
	case res == nil || !res.Success:
		detail := agent.FailureDetail(res)
		s.logger.Info("agent reported failure", "detail", detail)
		return s.errorMessage(detail, text), metrics.OutcomeAgentError
	default:
		return chat.Message{
			Role:      chat.RoleAssistant,
			Content:   agent.Extract(res),
			Timestamp: s.now(),
		}, metrics.OutcomeAssistant
	}
}

// call invokes the caller, converting a panic into a transport fault.
func (s *Service) call(ctx context.Context, text string) (res *agent.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("agent caller panicked: %v", r)
		}
	}()
	return s.caller.Call(ctx, text, agent.AgentID)
}

func (s *Service) errorMessage(content, source string) chat.Message {
	return chat.Message{
		Role:        chat.RoleError,
		Content:     content,
		Timestamp:   s.now(),
		RetrySource: source,
	}
}

func (s *Service) finish(conversationID string) {
	s.mu.Lock()
	s.activeAgent = ""
	s.mu.Unlock()
	s.sending.Store(false)
	s.metrics.SetInFlight(false)
	s.publish(EventSendingFinished, conversationID, nil)
}

func (s *Service) conversationsChanged(conversationID string) {
	s.metrics.SetConversations(s.store.Len())
	s.publish(EventConversationsChanged, conversationID, nil)
}

// publish fans an event out to the conversation's subscribers and to
// AllConversations.
func (s *Service) publish(kind EventKind, conversationID string, msg *chat.Message) {
	event := &Event{
		Kind:           kind,
		ConversationID: conversationID,
		Message:        msg,
		Timestamp:      s.now(),
	}
	if conversationID != "" {
		s.broadcaster.Publish(conversationID, event, "")
	}
	s.broadcaster.Publish(AllConversations, event, "")
}
