// ABOUTME: In-memory fan-out of conversation events to front-end subscribers
// ABOUTME: Subscribers listen on a conversation id or on AllConversations

package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// EventBroadcaster provides in-memory pub/sub for conversation events.
// Subscribers register for a conversation id, or AllConversations, and receive
// events as the service applies them. Web and terminal front-ends use it to
// redraw without polling.
type EventBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan *Event // key -> subID -> ch
	logger      *slog.Logger
}

// NewEventBroadcaster creates a broadcaster. Pass nil logger for default.
func NewEventBroadcaster(logger *slog.Logger) *EventBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBroadcaster{
		subscribers: make(map[string]map[string]chan *Event),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for events on the given conversation key.
// Returns a channel that receives events and a subscription ID for later
// unsubscription. The subscription is automatically cleaned up when ctx is
// cancelled.
func (b *EventBroadcaster) Subscribe(ctx context.Context, key string) (<-chan *Event, string) {
	subID := uuid.New().String()
	ch := make(chan *Event, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[key]; !ok {
		b.subscribers[key] = make(map[string]chan *Event)
	}
	b.subscribers[key][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added",
		"key", key,
		"sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(key, subID)
	}()

	return ch, subID
}

// Publish sends an event to all subscribers of the given key. If excludeSubID
// is non-empty, that subscriber is skipped. Non-blocking: events are dropped
// for subscribers whose channels are full.
func (b *EventBroadcaster) Publish(key string, event *Event, excludeSubID string) {
	// Held across the sends so Unsubscribe cannot close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers[key] {
		if excludeSubID != "" && id == excludeSubID {
			continue
		}
		select {
		case ch <- event:
			// Sent
		default:
			// Subscriber channel full, drop event for this subscriber
			b.logger.Debug("dropped event for slow subscriber",
				"key", key,
				"kind", event.Kind)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *EventBroadcaster) Unsubscribe(key, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[key]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	// Clean up empty conversation key entries
	if len(subs) == 0 {
		delete(b.subscribers, key)
	}

	b.logger.Debug("subscriber removed",
		"key", key,
		"sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *EventBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for convKey, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, convKey)
	}

	b.logger.Debug("broadcaster closed")
}
