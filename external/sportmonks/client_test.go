package sportmonks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Token:      "secret-token",
		Logger:     logging.NewNop(),
	})
}

func TestRequest_AppendsTokenAndParams(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/19" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_token"); got != "secret-token" {
			t.Errorf("expected api_token query param, got %q", got)
		}
		if got := r.URL.Query().Get("include"); got != "state" {
			t.Errorf("expected include=state, got %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"id":19}}`))
	})

	envelope, err := client.Request(context.Background(), "/fixtures/19", map[string]string{"include": "state"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !envelope.HasData() {
		t.Fatalf("expected data in envelope")
	}
}

func TestRequest_MissingCredentials(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{HTTPClient: server.Client(), BaseURL: server.URL, Token: "  ", Logger: logging.NewNop()})
	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call without a token, got %d", calls.Load())
	}
}

func TestRequest_HTTPErrorKeepsStatusAndRedactsBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"token secret-token has no access to api_token=secret-token"}`))
	})

	_, err := client.Request(context.Background(), "leagues/8", nil)
	if !errors.Is(err, ErrHTTP) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status %d", httpErr.StatusCode)
	}
	if strings.Contains(httpErr.Body, "secret-token") {
		t.Fatalf("token leaked into error body: %s", httpErr.Body)
	}
	if IsTransport(err) {
		t.Fatalf("403 must not count as a transport failure")
	}
}

func TestRequest_ServerErrorIsTransport(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !IsTransport(err) {
		t.Fatalf("expected transport failure for 502, got %v", err)
	}
}

func TestRequest_MalformedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRequest_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	httpClient := server.Client()
	httpClient.Timeout = 50 * time.Millisecond
	client := NewClient(ClientConfig{HTTPClient: httpClient, BaseURL: server.URL, Token: "secret-token", Logger: logging.NewNop()})

	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %v", err)
	}
}

func TestRequest_ConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(ClientConfig{BaseURL: baseURL, Token: "secret-token", Logger: logging.NewNop()})
	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %v", err)
	}
}

func TestRequest_CircuitOpensAfterTransportFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Token:      "secret-token",
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.Request(context.Background(), "fixtures/1", nil); !errors.Is(err, ErrHTTP) {
			t.Fatalf("call %d: expected ErrHTTP, got %v", i, err)
		}
	}
	_, err := client.Request(context.Background(), "fixtures/1", nil)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection from open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to skip the network, got %d calls", calls.Load())
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.sportmonks.com/v3/football/fixtures/1?api_token=abc&include=state")
	if strings.Contains(got, "abc") || !strings.Contains(got, "api_token=REDACTED") {
		t.Fatalf("unexpected redacted url %q", got)
	}
}
