package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// chatReply builds a minimal chat completions response body.
func chatReply(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + content + `"}}]}`
}

// TestNewChatClient tests constructor validation.
func TestNewChatClient(t *testing.T) {
	t.Parallel()

	t.Run("valid arguments create client", func(t *testing.T) {
		t.Parallel()

		client, err := NewChatClient("http://localhost:11434/v1/chat/completions", "llama3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client == nil {
			t.Fatal("expected non-nil client")
		}
	})

	t.Run("missing endpoint returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewChatClient("", "llama3")
		if !errors.Is(err, ErrMissingEndpoint) {
			t.Errorf("expected ErrMissingEndpoint, got %v", err)
		}
	})

	t.Run("missing model returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewChatClient("http://localhost:11434/v1/chat/completions", "")
		if !errors.Is(err, ErrMissingModel) {
			t.Errorf("expected ErrMissingModel, got %v", err)
		}
	})
}

// TestGenerate tests the happy path and request shape.
func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns reply content", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %q, expected POST", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, expected application/json", ct)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("Authorization = %q, expected bearer token", auth)
			}
			w.Write([]byte(chatReply("hello")))
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model", WithAPIKey("test-key"))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		got, err := client.Generate(context.Background(), "say hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "hello" {
			t.Errorf("Generate() = %q, expected %q", got, "hello")
		}
	})

	t.Run("no authorization header without API key", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "" {
				t.Errorf("Authorization = %q, expected empty", auth)
			}
			w.Write([]byte(chatReply("ok")))
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model")
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if _, err := client.Generate(context.Background(), "ping"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty choices returns ErrEmptyResponse", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model")
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.Generate(context.Background(), "ping")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
	})
}

// TestGenerateRetry tests the retry policy: 429 and 503 are retried with
// backoff, other statuses fail immediately.
func TestGenerateRetry(t *testing.T) {
	t.Parallel()

	t.Run("retries on 429 then succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(chatReply("eventually")))
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model", WithBackoffBase(time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		got, err := client.Generate(context.Background(), "ping")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "eventually" {
			t.Errorf("Generate() = %q, expected %q", got, "eventually")
		}
		if calls.Load() != 2 {
			t.Errorf("server saw %d calls, expected 2", calls.Load())
		}
	})

	t.Run("retries on 503 up to max attempts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model", WithBackoffBase(time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if _, err := client.Generate(context.Background(), "ping"); err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if calls.Load() != defaultMaxAttempts {
			t.Errorf("server saw %d calls, expected %d", calls.Load(), defaultMaxAttempts)
		}
	})

	t.Run("does not retry on 400", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model", WithBackoffBase(time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if _, err := client.Generate(context.Background(), "ping"); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("server saw %d calls, expected 1", calls.Load())
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		client, err := NewChatClient(srv.URL, "test-model", WithBackoffBase(time.Minute))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = client.Generate(ctx, "ping")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
