// ABOUTME: Server-rendered web front-end for the chat client
// ABOUTME: Form posts drive the send pipeline; an SSE stream tells open pages to refresh

package webui

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/coven-chat/internal/conversation"
	"github.com/2389/coven-chat/internal/dedupe"
	"github.com/2389/coven-chat/internal/ident"
)

const (
	// startWait bounds how long a send handler waits for the pipeline to
	// record the user message before redirecting.
	startWait = 2 * time.Second

	// heartbeatInterval is the SSE keep-alive period.
	heartbeatInterval = 30 * time.Second
)

// Config holds web front-end configuration
type Config struct {
	// Sender labels the user's avatar. Defaults to "You".
	Sender string

	// MetricsPath serves Gatherer in Prometheus text format when both are set.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithIDs overrides the idempotency key generator.
func WithIDs(ids ident.Generator) Option {
	return func(s *Server) { s.ids = ids }
}

// WithClock overrides the time source for header dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server handles the chat UI routes.
type Server struct {
	svc      *conversation.Service
	seen     *dedupe.Cache
	config   Config
	sender   string
	ids      ident.Generator
	now      func() time.Time
	logger   *slog.Logger
	pageTmpl *template.Template
	helpTmpl *template.Template

	helpOnce sync.Once
	helpHTML template.HTML

	// sends tracks background pipeline goroutines.
	sends sync.WaitGroup
}

// New creates a Server. A nil cache disables idempotency-key checks.
func New(svc *conversation.Service, seen *dedupe.Cache, cfg Config, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Sender == "" {
		cfg.Sender = "You"
	}
	page, help := parseTemplates()
	s := &Server{
		svc:      svc,
		seen:     seen,
		config:   cfg,
		sender:   cfg.Sender,
		ids:      ident.Default,
		now:      time.Now,
		logger:   logger.With("component", "webui"),
		pageTmpl: page,
		helpTmpl: help,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers all chat routes on the given mux
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)

	mux.HandleFunc("POST /conversations", s.handleNewConversation)
	mux.HandleFunc("POST /conversations/{id}/select", s.handleSelectConversation)
	mux.HandleFunc("POST /conversations/{id}/delete", s.handleDeleteConversation)

	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("POST /messages/{id}/retry", s.handleRetry)
	mux.HandleFunc("POST /sample", s.handleSample)

	if s.config.MetricsPath != "" && s.config.Gatherer != nil {
		mux.Handle("GET "+s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Wait blocks until background sends have finished.
func (s *Server) Wait() {
	s.sends.Wait()
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleNewConversation(w http.ResponseWriter, r *http.Request) {
	id := s.svc.NewConversation()
	s.logger.Debug("conversation created", "conversation_id", id)
	redirectHome(w, r)
}

func (s *Server) handleSelectConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.svc.SelectConversation(id) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Deleting is a silent no-op while the sample data is showing.
	if !s.svc.DeleteConversation(id) && !s.svc.Store().ShowingSample() {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	text := r.PostFormValue("message")
	conversationID := r.PostFormValue("conversation_id")

	if key := r.PostFormValue("idempotency_key"); s.seen != nil && s.seen.CheckAndMark(key) {
		s.logger.Debug("duplicate submission ignored", "idempotency_key", key)
		redirectHome(w, r)
		return
	}

	s.startSend(r, text, func(ctx context.Context) (*conversation.SendResult, error) {
		return s.svc.Submit(ctx, text, conversationID)
	})
	redirectHome(w, r)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, msg, ok := s.svc.Store().FindMessage(id)
	if !ok || !msg.Retryable() {
		http.Error(w, "Message is not retryable", http.StatusNotFound)
		return
	}

	s.startSend(r, msg.RetrySource, func(ctx context.Context) (*conversation.SendResult, error) {
		return s.svc.Retry(ctx, msg.RetrySource)
	})
	redirectHome(w, r)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	enabled, err := strconv.ParseBool(r.PostFormValue("enabled"))
	if err != nil {
		http.Error(w, "enabled must be true or false", http.StatusBadRequest)
		return
	}
	s.svc.SetSampleView(enabled)
	redirectHome(w, r)
}

type sendFunc func(ctx context.Context) (*conversation.SendResult, error)

// startSend runs send in the background so the request is not held for the
// agent call. It returns once the pipeline has started, finished or startWait
// has elapsed, whichever comes first, so the redirected page already shows
// the user message.
func (s *Server) startSend(r *http.Request, text string, send sendFunc) {
	subCtx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events, _ := s.svc.Subscribe(subCtx, conversation.AllConversations)

	done := make(chan struct{})
	bg := context.WithoutCancel(r.Context())
	s.sends.Go(func() {
		defer close(done)
		res, err := send(bg)
		switch {
		case errors.Is(err, conversation.ErrSendInFlight):
			// Keep the text so it is still in the box after the redirect.
			s.svc.SetDraft(text)
			s.logger.Debug("send rejected, another send in flight")
		case errors.Is(err, conversation.ErrEmptyMessage):
			s.logger.Debug("empty message ignored")
		case err != nil:
			s.logger.Error("send failed", "error", err)
		default:
			s.logger.Debug("send finished",
				"conversation_id", res.ConversationID,
				"reply_role", res.Reply.Role)
		}
	})

	timer := time.NewTimer(startWait)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok || ev.Kind == conversation.EventSendingStarted {
				return
			}
		case <-done:
			return
		case <-timer.C:
			return
		}
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
