package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// defaultAnalysisTimeout bounds a single batch submission. Analysis of
// a five-page batch can require several model inference round trips.
const defaultAnalysisTimeout = 120 * time.Second

// AnalysisClient is an HTTP client for the relevance-analysis service.
// It implements the analyzer interface the dispatcher consumes.
type AnalysisClient struct {
	baseURL    string
	httpClient *http.Client
}

// AnalysisClientOption configures an AnalysisClient.
type AnalysisClientOption func(*AnalysisClient)

// WithAnalysisHTTPClient overrides the underlying HTTP client.
func WithAnalysisHTTPClient(client *http.Client) AnalysisClientOption {
	return func(c *AnalysisClient) {
		c.httpClient = client
	}
}

// NewAnalysisClient creates a client for the analysis service at
// baseURL, e.g. "http://localhost:8002".
func NewAnalysisClient(baseURL string, opts ...AnalysisClientOption) *AnalysisClient {
	c := &AnalysisClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultAnalysisTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// analyzeRequest is the batch submission payload. Search strings are
// deliberately omitted: the analysis service fetches the current set
// from the query service itself, so the scraper never holds a stale
// copy.
type analyzeRequest struct {
	Pages []model.PageInput `json:"pages"`
}

// Analyze submits a batch of scraped pages and returns the verdicts.
func (c *AnalysisClient) Analyze(ctx context.Context, pages []model.PageInput) (model.AnalysisReport, error) {
	body, err := json.Marshal(analyzeRequest{Pages: pages})
	if err != nil {
		return model.AnalysisReport{}, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return model.AnalysisReport{}, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.AnalysisReport{}, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.AnalysisReport{}, fmt.Errorf("analysis service returned status %d: %s",
			resp.StatusCode, string(msg))
	}

	var report model.AnalysisReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return model.AnalysisReport{}, fmt.Errorf("decode analysis response: %w", err)
	}
	return report, nil
}
