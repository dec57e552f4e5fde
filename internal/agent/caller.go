// ABOUTME: Caller abstraction for the external chat agent and its HTTP implementation
// ABOUTME: A returned error is a transport fault; agent-reported failures come back as data

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	// AgentID names the single agent this client talks to.
	AgentID = "699b595299a581580fa6037c"
	// AgentName is the display name of that agent.
	AgentName = "Chat Agent"

	maxResponseBytes = 4 << 20
)

// ErrNoEndpoint is returned when an HTTPCaller has no endpoint configured.
var ErrNoEndpoint = errors.New("agent endpoint not configured")

// Caller invokes the agent. Implementations may block for as long as the
// agent takes; the caller's context is the only deadline.
type Caller interface {
	Call(ctx context.Context, message, agentID string) (*Result, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, message, agentID string) (*Result, error)

// Call calls f.
func (f CallerFunc) Call(ctx context.Context, message, agentID string) (*Result, error) {
	return f(ctx, message, agentID)
}

// callRequest is the JSON body POSTed to the agent endpoint.
type callRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

// HTTPCaller calls an agent endpoint that accepts callRequest and answers
// with a Result.
type HTTPCaller struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
	logger   *slog.Logger
}

// HTTPOption configures an HTTPCaller.
type HTTPOption func(*HTTPCaller)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPCaller) { c.client = client }
}

// WithHeaders adds static headers to every request.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(c *HTTPCaller) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger. Pass nil for default.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPCaller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPCaller creates a caller for the given endpoint URL.
func NewHTTPCaller(endpoint string, opts ...HTTPOption) *HTTPCaller {
	c := &HTTPCaller{
		endpoint: endpoint,
		client:   http.DefaultClient,
		headers:  make(map[string]string),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "agent_caller")
	return c
}

// Call POSTs the message to the endpoint. Any response body that decodes as a
// Result is returned as data, whatever the status code. An undecodable 2xx
// body is treated as a successful call with no payload so that extraction
// falls back to its default reply.
func (c *HTTPCaller) Call(ctx context.Context, message, agentID string) (*Result, error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	body, err := json.Marshal(callRequest{Message: message, AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling agent: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		if !ok {
			return nil, fmt.Errorf("agent returned status %d", resp.StatusCode)
		}
		c.logger.Warn("undecodable agent response",
			"status", resp.StatusCode,
			"error", err,
			"bytes", len(data))
		return &Result{Success: true}, nil
	}

	if !ok && result.Success {
		c.logger.Warn("agent reported success with error status", "status", resp.StatusCode)
		result.Success = false
		if result.Error == "" {
			result.Error = fmt.Sprintf("agent returned status %d", resp.StatusCode)
		}
	}

	c.logger.Debug("agent call completed",
		"status", resp.StatusCode,
		"success", result.Success)
	return &result, nil
}
