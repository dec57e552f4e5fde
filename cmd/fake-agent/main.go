// ABOUTME: Minimal fake agent for manual and E2E testing; echoes messages with markup.
// ABOUTME: Usage: fake-agent [-addr 127.0.0.1:8091] [-delay 500ms]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"
)

// request mirrors the body the chat client posts.
type request struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8091", "HTTP listen address")
	delay := flag.Duration("delay", 500*time.Millisecond, "Simulated thinking time per reply")
	flag.Parse()

	if err := run(*addr, *delay); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, delay time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(delay),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "fake agent listening on http://%s/agent\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func newHandler(delay time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent", func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		log.Printf("received message [%s]: %s", req.AgentID, req.Message)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		writeJSON(w, reply(req.Message))
	})
	return mux
}

// reply builds a result in the shape the real agent uses: the text is a JSON
// document nested inside the response's result string. "/fail" reports a
// failure instead.
func reply(input string) map[string]any {
	if rest, ok := strings.CutPrefix(input, "/fail"); ok {
		detail := strings.TrimSpace(rest)
		if detail == "" {
			detail = "The agent could not complete this request."
		}
		return map[string]any{"success": false, "error": detail}
	}

	inner, _ := json.Marshal(map[string]string{"text": echoReply(input)})
	return map[string]any{
		"success":  true,
		"response": map[string]any{"result": string(inner)},
	}
}

func echoReply(input string) string {
	lower := strings.ToLower(input)
	if strings.Contains(lower, "markdown") || strings.Contains(lower, "bullet") || strings.Contains(lower, "list") {
		return "## Here is a **formatted** response\n\n- First item\n- Second item with `code`\n- Third item\n\n1. One\n2. Two\n"
	}
	return fmt.Sprintf("Echo: **%s**\n\nI received your message and am responding with some `formatted` text.", input)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}
