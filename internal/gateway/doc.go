// Package gateway wires the chat client together and runs its HTTP server.
//
// # Overview
//
// New builds every component from a config.Config:
//
//   - chat.Store holding conversations, optionally starting in sample view
//   - agent.HTTPCaller posting to agent.url (replaceable with WithCaller)
//   - conversation.Service, the single-flight send pipeline
//   - conversation.EventBroadcaster feeding the web UI's SSE stream
//   - dedupe.Cache rejecting repeated form submissions
//   - a Prometheus registry with Go and process collectors when metrics.enabled
//   - webui.Server serving the browser front-end
//
// The terminal front-end in cmd/coven-chat reuses Conversation() so both
// front-ends share the same store and in-flight flag.
//
// # Lifecycle
//
// Run listens on server.http_addr and blocks until its context is canceled
// or the server fails. Shutdown then stops accepting requests, waits for
// background sends started by the web UI, and closes event subscribers.
package gateway
