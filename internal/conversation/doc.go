// Package conversation implements the send pipeline between the chat
// front-ends and the agent.
//
// # Service
//
// The Service owns the chat store, the agent caller and a single in-flight
// flag:
//
//	svc := conversation.New(store, caller, logger, conversation.WithTimeout(time.Minute))
//	res, err := svc.Submit(ctx, "hello", "")
//
// Submit resolves the target conversation (creating one when nothing live is
// active), records the trimmed user message, calls the agent and records
// exactly one reply: an assistant message on success, or an error message
// carrying the original text for Retry. Blank input returns ErrEmptyMessage
// and a second Submit while a call is outstanding returns ErrSendInFlight;
// neither touches the store.
//
// # Events
//
// Every state change is published on an EventBroadcaster, keyed by
// conversation id and by AllConversations:
//
//   - message_appended: a user, assistant or error message was recorded
//   - sending_started / sending_finished: the in-flight flag changed
//   - conversations_changed: a conversation was created, selected, deleted
//     or retitled, or the sample overlay was toggled
//
// The web front-end streams these over SSE; the terminal front-end uses them
// to drive its thinking indicator.
package conversation
