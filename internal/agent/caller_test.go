// ABOUTME: Tests for the HTTP agent caller
// ABOUTME: Uses httptest servers to cover results, agent failures and transport faults

package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCaller_SendsRequestAndDecodesResult(t *testing.T) {
	var got callRequest
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Get("X-Api-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"response":{"result":"{\"text\":\"pong\"}"}}`))
	}))
	defer srv.Close()

	c := NewHTTPCaller(srv.URL, WithHeaders(map[string]string{"X-Api-Key": "k"}))
	res, err := c.Call(context.Background(), "ping", AgentID)
	require.NoError(t, err)

	assert.Equal(t, "ping", got.Message)
	assert.Equal(t, AgentID, got.AgentID)
	assert.Equal(t, "k", gotHeader)
	assert.True(t, res.Success)
	assert.Equal(t, "pong", Extract(res))
}

func TestHTTPCaller_AgentFailureIsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":"model overloaded"}`))
	}))
	defer srv.Close()

	res, err := NewHTTPCaller(srv.URL).Call(context.Background(), "hi", AgentID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "model overloaded", FailureDetail(res))
}

func TestHTTPCaller_ErrorStatusOverridesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	res, err := NewHTTPCaller(srv.URL).Call(context.Background(), "hi", AgentID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "agent returned status 500", res.Error)
}

func TestHTTPCaller_UndecodableErrorStatusIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPCaller(srv.URL).Call(context.Background(), "hi", AgentID)
	assert.EqualError(t, err, "agent returned status 502")
}

func TestHTTPCaller_UndecodableSuccessDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	res, err := NewHTTPCaller(srv.URL).Call(context.Background(), "hi", AgentID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, DefaultReply, Extract(res))
}

func TestHTTPCaller_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPCaller(url).Call(context.Background(), "hi", AgentID)
	assert.Error(t, err)
}

func TestHTTPCaller_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPCaller(srv.URL).Call(ctx, "hi", AgentID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPCaller_NoEndpoint(t *testing.T) {
	_, err := NewHTTPCaller("").Call(context.Background(), "hi", AgentID)
	assert.ErrorIs(t, err, ErrNoEndpoint)
}
