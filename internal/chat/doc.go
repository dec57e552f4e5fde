// Package chat holds the conversations of a single chat session in memory.
//
// # Overview
//
// Store is the one owned state object for conversations: the live list
// (newest first), the active conversation id, and the sample overlay flag.
// Nothing is persisted; everything is lost when the process exits.
//
// # Invariants
//
//   - Conversation ids are unique; message ids are unique per conversation.
//   - Messages are only appended, never edited or reordered, and their
//     timestamps never decrease.
//   - A conversation's title is set once, from its first message when that
//     message comes from the user, truncated to TitleMaxRunes plus "...".
//   - The active id names a visible conversation or is empty.
//
// # Sample Overlay
//
// When the overlay is enabled and there are no live conversations, reads are
// served from a fixed demo dataset. Writes never touch that dataset: creating
// a conversation or resolving a send target materialises a live conversation
// and clears the overlay. Enabling the overlay while live conversations exist
// sets the flag but keeps showing live data.
package chat
