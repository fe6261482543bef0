package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
	"github.com/pramath6095/dark-web-leak-ai/internal/queries"
)

// ErrRemoteNotConfigured is returned when the query service rejects a
// request because no target has been configured yet.
var ErrRemoteNotConfigured = errors.New("remote: query service not configured")

// defaultQueryTimeout bounds query-service calls. Query generation can
// involve an LLM round trip, so this is generous.
const defaultQueryTimeout = 60 * time.Second

// ConfigureResult reports what the query service generated for a newly
// configured target.
type ConfigureResult struct {
	// Message is the service's human-readable confirmation.
	Message string `json:"message"`

	// QueriesGenerated is how many initial queries were produced.
	QueriesGenerated int `json:"queries_generated"`

	// SearchStringsCount is how many detailed search strings were
	// derived for the relevance pipeline.
	SearchStringsCount int `json:"search_strings_count"`
}

// QueryClient is an HTTP client for the query-supply service. It
// implements the query source the poll loop consumes.
type QueryClient struct {
	baseURL    string
	httpClient *http.Client
}

// QueryClientOption configures a QueryClient.
type QueryClientOption func(*QueryClient)

// WithQueryHTTPClient overrides the underlying HTTP client.
func WithQueryHTTPClient(client *http.Client) QueryClientOption {
	return func(c *QueryClient) {
		c.httpClient = client
	}
}

// NewQueryClient creates a client for the query service at baseURL,
// e.g. "http://localhost:8001".
func NewQueryClient(baseURL string, opts ...QueryClientOption) *QueryClient {
	c := &QueryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultQueryTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure submits the target profile and triggers initial query and
// search-string generation.
func (c *QueryClient) Configure(ctx context.Context, profile model.TargetProfile) (ConfigureResult, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return ConfigureResult{}, fmt.Errorf("marshal target profile: %w", err)
	}

	var result ConfigureResult
	if err := c.do(ctx, http.MethodPost, "/configure", bytes.NewReader(body), &result); err != nil {
		return ConfigureResult{}, err
	}
	return result, nil
}

// NextQueries fetches the next batch of unserved queries. An empty
// batch with Exhausted set is the stop signal for the poll loop.
func (c *QueryClient) NextQueries(ctx context.Context) (queries.Batch, error) {
	var batch queries.Batch
	if err := c.do(ctx, http.MethodGet, "/queries", nil, &batch); err != nil {
		return queries.Batch{}, err
	}
	return batch, nil
}

// SearchStrings fetches the detailed search strings derived from the
// configured target profile.
func (c *QueryClient) SearchStrings(ctx context.Context) ([]string, error) {
	var resp struct {
		SearchStrings []string `json:"search_strings"`
	}
	if err := c.do(ctx, http.MethodGet, "/search-strings", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SearchStrings, nil
}

// Stats fetches the query service's health summary.
func (c *QueryClient) Stats(ctx context.Context) (queries.Stats, error) {
	var stats queries.Stats
	if err := c.do(ctx, http.MethodGet, "/health", nil, &stats); err != nil {
		return queries.Stats{}, err
	}
	return stats, nil
}

func (c *QueryClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build query service request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call query service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrRemoteNotConfigured
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("query service returned status %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode query service response: %w", err)
	}
	return nil
}
