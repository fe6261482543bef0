package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultClassificationLabels are the candidate labels for zero-shot
// classification. "irrelevant" must be present: it is the rejection
// label the fusion stage checks against.
var defaultClassificationLabels = []string{
	"credential_leak",
	"database_dump",
	"internal_document",
	"general_mention",
	"irrelevant",
}

// irrelevantLabel is the classification label meaning the page has
// nothing to do with the monitored target.
const irrelevantLabel = "irrelevant"

// ErrEmptyModelResponse is returned when an inference endpoint answers
// successfully but with no usable scores.
var ErrEmptyModelResponse = errors.New("pipeline: inference endpoint returned no scores")

// Classifier assigns one of the classification labels to a text chunk.
// Implementations are expected to be safe for concurrent use.
type Classifier interface {
	// Classify returns the top label and its confidence in [0,1].
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// Embedder scores the semantic similarity of candidate sentences
// against a source sentence. Implementations are expected to be safe
// for concurrent use.
type Embedder interface {
	// Similarity returns one cosine similarity score per sentence,
	// in input order.
	Similarity(ctx context.Context, source string, sentences []string) ([]float64, error)
}

const (
	defaultClassifyTimeout   = 60 * time.Second
	defaultSimilarityTimeout = 120 * time.Second
)

// InferenceClient calls HuggingFace-style hosted inference endpoints
// for both zero-shot classification and sentence similarity. It
// implements Classifier and Embedder.
//
// Design decision: both capabilities live on one client because they
// share transport concerns (auth header, JSON envelope, error
// mapping) and are always configured together. The Classifier and
// Embedder interfaces still let tests and future local backends
// substitute either one independently.
type InferenceClient struct {
	// classifierURL is the zero-shot classification endpoint.
	classifierURL string

	// embeddingURL is the sentence-similarity endpoint.
	embeddingURL string

	// apiKey is sent as a Bearer token when non-empty.
	apiKey string

	// labels are the candidate labels sent with every zero-shot
	// request.
	labels []string

	// classifyClient and similarityClient carry the per-capability
	// timeouts. Embedding large batches is slower than classifying
	// a single chunk.
	classifyClient   *http.Client
	similarityClient *http.Client
}

// InferenceOption configures an InferenceClient.
type InferenceOption func(*InferenceClient)

// WithInferenceAPIKey sets the Bearer token for authenticated
// endpoints. Public endpoints work without one, at lower rate limits.
func WithInferenceAPIKey(key string) InferenceOption {
	return func(c *InferenceClient) {
		c.apiKey = key
	}
}

// WithCandidateLabels overrides the candidate label set for zero-shot
// classification. The set must include "irrelevant" for the fusion
// stage to reject pages; config validation enforces that.
func WithCandidateLabels(labels []string) InferenceOption {
	return func(c *InferenceClient) {
		if len(labels) > 0 {
			c.labels = labels
		}
	}
}

// WithClassifyHTTPClient overrides the HTTP client used for
// classification calls.
func WithClassifyHTTPClient(client *http.Client) InferenceOption {
	return func(c *InferenceClient) {
		c.classifyClient = client
	}
}

// WithSimilarityHTTPClient overrides the HTTP client used for
// similarity calls.
func WithSimilarityHTTPClient(client *http.Client) InferenceOption {
	return func(c *InferenceClient) {
		c.similarityClient = client
	}
}

// NewInferenceClient creates a client for the given classification and
// embedding endpoints.
func NewInferenceClient(classifierURL, embeddingURL string, opts ...InferenceOption) *InferenceClient {
	c := &InferenceClient{
		classifierURL:    classifierURL,
		embeddingURL:     embeddingURL,
		labels:           defaultClassificationLabels,
		classifyClient:   &http.Client{Timeout: defaultClassifyTimeout},
		similarityClient: &http.Client{Timeout: defaultSimilarityTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// zeroShotRequest is the hosted-inference zero-shot payload.
type zeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
	} `json:"parameters"`
}

// zeroShotResponse mirrors the hosted-inference zero-shot reply:
// labels sorted by descending score.
type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify implements Classifier against the zero-shot endpoint.
func (c *InferenceClient) Classify(ctx context.Context, text string) (string, float64, error) {
	var reqBody zeroShotRequest
	reqBody.Inputs = text
	reqBody.Parameters.CandidateLabels = c.labels

	var resp zeroShotResponse
	if err := c.post(ctx, c.classifyClient, c.classifierURL, reqBody, &resp); err != nil {
		return "", 0, err
	}
	if len(resp.Labels) == 0 || len(resp.Scores) == 0 {
		return "", 0, ErrEmptyModelResponse
	}
	return resp.Labels[0], resp.Scores[0], nil
}

// sentenceSimilarityRequest is the hosted-inference sentence-similarity
// payload.
type sentenceSimilarityRequest struct {
	Inputs struct {
		SourceSentence string   `json:"source_sentence"`
		Sentences      []string `json:"sentences"`
	} `json:"inputs"`
}

// Similarity implements Embedder against the sentence-similarity
// endpoint, which returns one score per input sentence.
func (c *InferenceClient) Similarity(ctx context.Context, source string, sentences []string) ([]float64, error) {
	var reqBody sentenceSimilarityRequest
	reqBody.Inputs.SourceSentence = source
	reqBody.Inputs.Sentences = sentences

	var scores []float64
	if err := c.post(ctx, c.similarityClient, c.embeddingURL, reqBody, &scores); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrEmptyModelResponse
	}
	return scores, nil
}

// post sends a JSON payload and decodes the JSON response into out.
func (c *InferenceClient) post(ctx context.Context, client *http.Client, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call inference endpoint: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	return nil
}
