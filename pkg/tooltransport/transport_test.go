package tooltransport

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

func TestInvokeSuccessDecodesResult(t *testing.T) {
	var gotAuth string
	var gotBody invokeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"result":   map[string]any{"revenue": 1250.5},
			"metadata": map[string]any{"tool": "get_sales_summary", "duration_ms": 12},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	result, err := c.Invoke(context.Background(), "get_sales_summary", map[string]any{"window_days": 7})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "get_sales_summary", gotBody.Tool)
	assert.Equal(t, 7.0, gotBody.Arguments["window_days"])
	assert.Equal(t, 1250.5, result.(map[string]any)["revenue"])
}

func TestInvokeUnauthorizedIsToolInvocationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Invoke(context.Background(), "get_sales_summary", nil)

	var invErr *ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, http.StatusUnauthorized, invErr.StatusCode)
	assert.Equal(t, "unauthorized", invErr.Type)
}

func TestInvokeStructuredErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"type": "validation_error", "message": "unknown tool"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	_, err := c.Invoke(context.Background(), "no_such_tool", nil)

	var invErr *ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "validation_error", invErr.Type)
	assert.Equal(t, "unknown tool", invErr.Message)
}

func TestInvokeUnsuccessfulEnvelopeIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	_, err := c.Invoke(context.Background(), "get_sales_summary", nil)

	var invErr *ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "unsuccessful", invErr.Type)
}

func TestInvokeConnectionFaultIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse all connections

	c := New(srv.URL, "token")
	_, err := c.Invoke(context.Background(), "get_sales_summary", nil)

	var trErr *TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "get_sales_summary", trErr.Tool)
}

func TestInvokeHonorsTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() { close(block); srv.Close() }()

	c := New(srv.URL, "token", WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := c.Invoke(context.Background(), "get_sales_summary", nil)

	var trErr *TransportError
	require.ErrorAs(t, err, &trErr)
	require.ErrorIs(t, trErr.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": 1})
	}))
	defer srv.Close()

	var observed []string
	c := New(srv.URL, "token", WithObserver(func(tool string, _ time.Duration, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observed = append(observed, tool+":"+outcome)
	}))

	_, err := c.Invoke(context.Background(), "get_sales_summary", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"get_sales_summary:ok"}, observed)
}
