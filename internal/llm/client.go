package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Default client settings.
const (
	// defaultTimeout bounds a single generation request. Generation on
	// self-hosted backends can take over a minute for long prompts.
	defaultTimeout = 90 * time.Second

	// defaultMaxAttempts is the number of tries for a single request,
	// including the first one.
	defaultMaxAttempts = 3

	// defaultBackoffBase is the base wait between retries. The wait grows
	// as base * 3^attempt, so the default schedule is 5s, 15s, 45s.
	defaultBackoffBase = 5 * time.Second

	// defaultTemperature keeps query generation varied between rounds
	// without drifting into nonsense.
	defaultTemperature = 0.7
)

// TextGenerator produces free-form text for a prompt.
// Implementations are expected to be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatClient calls an OpenAI-compatible chat completions endpoint.
//
// Design decision: We target the chat completions wire format rather than a
// vendor SDK because every backend we care about (OpenAI, OpenRouter, vLLM,
// llama.cpp server) speaks it, so one client covers hosted and self-hosted
// deployments alike.
type ChatClient struct {
	// endpoint is the full chat completions URL.
	endpoint string

	// model is the model identifier sent with each request.
	model string

	// apiKey is sent as a bearer token when non-empty.
	apiKey string

	// httpClient is used for all requests.
	httpClient *http.Client

	// maxAttempts is the total number of tries per request.
	maxAttempts int

	// backoffBase is the base wait between retries.
	backoffBase time.Duration

	// logger records retry activity.
	logger *slog.Logger
}

// ChatClientOption configures a ChatClient.
type ChatClientOption func(*ChatClient)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) ChatClientOption {
	return func(c *ChatClient) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ChatClientOption {
	return func(c *ChatClient) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ChatClientOption {
	return func(c *ChatClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithBackoffBase sets the base wait between retries.
func WithBackoffBase(base time.Duration) ChatClientOption {
	return func(c *ChatClient) {
		c.backoffBase = base
	}
}

// WithLogger sets the logger used for retry activity.
func WithLogger(logger *slog.Logger) ChatClientOption {
	return func(c *ChatClient) {
		c.logger = logger
	}
}

// NewChatClient creates a client for the given chat completions endpoint
// and model.
func NewChatClient(endpoint, model string, opts ...ChatClientOption) (*ChatClient, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if model == "" {
		return nil, ErrMissingModel
	}

	c := &ChatClient{
		endpoint:    endpoint,
		model:       model,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatMessage is a single message in a chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message and returns the model's
// reply text.
//
// Requests that fail with 429 (rate limited) or 503 (backend loading or
// overloaded) are retried with exponential backoff. All other HTTP errors
// fail immediately: they indicate a configuration problem that waiting
// will not fix.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			// Backoff schedule: base * 3^(attempt-1).
			wait := c.backoffBase
			for i := 1; i < attempt; i++ {
				wait *= 3
			}
			c.logger.WarnContext(ctx, "generation endpoint busy, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		content, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

// doRequest performs one request. The second return value reports whether
// the failure is retryable.
func (c *ChatClient) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors are not retried: the poll loop will come back
		// on its next cycle anyway.
		return "", false, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decoding.
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return "", true, fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	default:
		return "", false, fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read generation response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, ErrEmptyResponse
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", false, ErrEmptyResponse
	}
	return content, false, nil
}
