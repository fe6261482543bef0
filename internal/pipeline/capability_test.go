package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInferenceClientClassify(t *testing.T) {
	t.Parallel()

	t.Run("sends zero-shot payload and returns top label", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q, want bearer token", got)
			}

			var req zeroShotRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Inputs != "suspicious text" {
				t.Errorf("inputs = %q, want the submitted text", req.Inputs)
			}
			if len(req.Parameters.CandidateLabels) != len(defaultClassificationLabels) {
				t.Errorf("got %d candidate labels, want %d",
					len(req.Parameters.CandidateLabels), len(defaultClassificationLabels))
			}

			json.NewEncoder(w).Encode(zeroShotResponse{ //nolint:errcheck
				Labels: []string{"credential_leak", "irrelevant"},
				Scores: []float64{0.91, 0.09},
			})
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL, WithInferenceAPIKey("test-key"))
		label, confidence, err := client.Classify(context.Background(), "suspicious text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "credential_leak" {
			t.Errorf("label = %q, want credential_leak", label)
		}
		if confidence != 0.91 {
			t.Errorf("confidence = %v, want 0.91", confidence)
		}
	})

	t.Run("custom candidate labels are sent verbatim", func(t *testing.T) {
		t.Parallel()

		labels := []string{"source_code_leak", "general_mention", "irrelevant"}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req zeroShotRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if len(req.Parameters.CandidateLabels) != len(labels) {
				t.Fatalf("got %d candidate labels, want %d",
					len(req.Parameters.CandidateLabels), len(labels))
			}
			for i, label := range labels {
				if req.Parameters.CandidateLabels[i] != label {
					t.Errorf("label %d = %q, want %q", i, req.Parameters.CandidateLabels[i], label)
				}
			}
			json.NewEncoder(w).Encode(zeroShotResponse{ //nolint:errcheck
				Labels: []string{"source_code_leak"},
				Scores: []float64{0.77},
			})
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL, WithCandidateLabels(labels))
		label, _, err := client.Classify(context.Background(), "text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != "source_code_leak" {
			t.Errorf("label = %q, want source_code_leak", label)
		}
	})

	t.Run("no auth header without api key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("Authorization = %q, want empty", got)
			}
			json.NewEncoder(w).Encode(zeroShotResponse{ //nolint:errcheck
				Labels: []string{"irrelevant"},
				Scores: []float64{0.5},
			})
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL)
		if _, _, err := client.Classify(context.Background(), "text"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty response is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(zeroShotResponse{}) //nolint:errcheck
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL)
		_, _, err := client.Classify(context.Background(), "text")
		if !errors.Is(err, ErrEmptyModelResponse) {
			t.Errorf("expected ErrEmptyModelResponse, got %v", err)
		}
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL)
		if _, _, err := client.Classify(context.Background(), "text"); err == nil {
			t.Error("expected error for 503 response")
		}
	})
}

func TestInferenceClientSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("sends source and sentences, returns scores in order", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req sentenceSimilarityRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Inputs.SourceSentence != "Data related to acme.com" {
				t.Errorf("source_sentence = %q", req.Inputs.SourceSentence)
			}
			if len(req.Inputs.Sentences) != 2 {
				t.Errorf("got %d sentences, want 2", len(req.Inputs.Sentences))
			}
			json.NewEncoder(w).Encode([]float64{0.12, 0.87}) //nolint:errcheck
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL)
		scores, err := client.Similarity(context.Background(),
			"Data related to acme.com", []string{"chunk one", "chunk two"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scores) != 2 || scores[0] != 0.12 || scores[1] != 0.87 {
			t.Errorf("scores = %v, want [0.12 0.87]", scores)
		}
	})

	t.Run("empty score list is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode([]float64{}) //nolint:errcheck
		}))
		defer server.Close()

		client := NewInferenceClient(server.URL, server.URL)
		_, err := client.Similarity(context.Background(), "query", []string{"chunk"})
		if !errors.Is(err, ErrEmptyModelResponse) {
			t.Errorf("expected ErrEmptyModelResponse, got %v", err)
		}
	})
}
