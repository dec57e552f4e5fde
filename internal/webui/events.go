// ABOUTME: Server-sent event stream of conversation changes
// ABOUTME: Open pages listen here and refresh when something they show changes

package webui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2389/coven-chat/internal/conversation"
)

// handleEvents streams every conversation event until the client goes away.
// An optional conversation query parameter narrows the stream to one
// conversation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("conversation")
	if key == "" {
		key = conversation.AllConversations
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, subID := s.svc.Subscribe(r.Context(), key)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscription\": %q}\n\n", subID)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			// SSE comment keeps proxies from closing an idle stream
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to marshal event", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}
