// ABOUTME: Composition root that wires store, agent caller, send pipeline and web UI
// ABOUTME: Owns the HTTP server lifecycle with graceful shutdown on context cancel

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/2389/coven-chat/internal/agent"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/conversation"
	"github.com/2389/coven-chat/internal/dedupe"
	"github.com/2389/coven-chat/internal/metrics"
	"github.com/2389/coven-chat/internal/webui"
)

// shutdownTimeout bounds graceful shutdown once Run's context is canceled.
const shutdownTimeout = 5 * time.Second

// Gateway owns every long-lived component of the chat client.
type Gateway struct {
	config       *config.Config
	logger       *slog.Logger
	store        *chat.Store
	caller       agent.Caller
	conversation *conversation.Service
	webUI        *webui.Server
	httpServer   *http.Server

	// eventBroadcaster fans pipeline events out to SSE subscribers
	eventBroadcaster *conversation.EventBroadcaster

	// dedupe rejects repeated form submissions
	dedupe *dedupe.Cache

	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCaller replaces the HTTP agent caller.
func WithCaller(c agent.Caller) Option {
	return func(g *Gateway) { g.caller = c }
}

// New builds a Gateway from cfg. It does not open any listeners.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	gw := &Gateway{
		config: cfg,
		logger: logger.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(gw)
	}

	if gw.caller == nil {
		gw.caller = agent.NewHTTPCaller(cfg.Agent.URL,
			agent.WithHeaders(cfg.Agent.Headers),
			agent.WithLogger(logger),
		)
	}

	if cfg.Metrics.Enabled {
		gw.registry = prometheus.NewRegistry()
		gw.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		gw.metrics = metrics.New(gw.registry)
	}

	gw.store = chat.NewStore(
		chat.WithSampleView(cfg.UI.SampleData),
		chat.WithLogger(logger),
	)
	gw.eventBroadcaster = conversation.NewEventBroadcaster(logger)
	gw.conversation = conversation.New(gw.store, gw.caller, logger,
		conversation.WithTimeout(cfg.Agent.Timeout),
		conversation.WithBroadcaster(gw.eventBroadcaster),
		conversation.WithMetrics(gw.metrics),
	)
	gw.dedupe = dedupe.New(dedupe.DefaultTTL, dedupe.DefaultMaxSize)

	uiCfg := webui.Config{Sender: cfg.UI.Sender}
	if gw.registry != nil {
		uiCfg.MetricsPath = cfg.Metrics.Path
		uiCfg.Gatherer = gw.registry
	}
	gw.webUI = webui.New(gw.conversation, gw.dedupe, uiCfg, logger)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.webUI.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Conversation returns the send pipeline, shared by the terminal front-end.
func (g *Gateway) Conversation() *conversation.Service {
	return g.conversation
}

// Handler returns the web UI handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run listens on the configured address and serves until ctx is canceled.
// Returns nil on graceful shutdown, or the error that stopped the server.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return g.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	g.logger.Info("starting chat server",
		"http_addr", ln.Addr().String(),
		"agent_url", g.config.Agent.URL,
		"sample_data", g.config.UI.SampleData,
		"metrics", g.registry != nil,
	)

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer serves HTTP in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown uses a fresh context since Run's context is already done.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, waits for background sends, and closes
// event subscribers.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down chat server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "pending sends", g.waitForSends(ctx))

	g.eventBroadcaster.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// waitForSends blocks until the web UI's background sends finish or ctx ends.
func (g *Gateway) waitForSends(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.webUI.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}
