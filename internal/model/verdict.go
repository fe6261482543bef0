package model

import "time"

// PageInput is a single scraped page submitted for analysis.
type PageInput struct {
	// Text is the raw scraped content (HTML or plain text).
	Text string `json:"text"`

	// SourceURL is the onion URL the content was scraped from.
	SourceURL string `json:"source_url"`
}

// PageVerdict is the relevance decision for one analyzed page.
// It is produced exactly once per page by the relevance pipeline and
// never mutated afterwards; it is the sole externally visible artifact
// of the analysis core.
type PageVerdict struct {
	// SourceURL identifies the page this verdict describes.
	SourceURL string `json:"source_url"`

	// IsRelevant is the fused relevance decision.
	IsRelevant bool `json:"is_relevant"`

	// Confidence is the weighted overall confidence in [0,1],
	// rounded to 4 decimals.
	Confidence float64 `json:"confidence"`

	// MatchedStrings lists the search strings found in the page text,
	// in search-string order. Empty means the prefilter rejected the
	// page and no inference ran.
	MatchedStrings []string `json:"matched_strings"`

	// ClassificationLabel is the zero-shot classification label.
	ClassificationLabel string `json:"classification_label"`

	// SimilarityScore is the maximum cosine similarity in [0,1]
	// between the profile query and any content chunk.
	SimilarityScore float64 `json:"similarity_score"`

	// Language is the detected ISO-639-1 language code, or "unknown".
	Language string `json:"language_detected"`

	// Summary is a one-line human-readable summary, set only for
	// relevant pages.
	Summary string `json:"summary,omitempty"`

	// AnalyzedAt records when the verdict was produced.
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`
}

// AnalysisReport is the result of analyzing one batch of pages.
type AnalysisReport struct {
	// Results holds one verdict per analyzed page, in input order.
	Results []PageVerdict `json:"results"`

	// Total is the number of pages analyzed.
	Total int `json:"total"`

	// RelevantCount is the number of relevant verdicts in Results.
	RelevantCount int `json:"relevant_count"`
}

// IrrelevantVerdict builds the minimal verdict for a page that skipped
// (or failed inside) the expensive inference stages.
func IrrelevantVerdict(sourceURL, language string) PageVerdict {
	return PageVerdict{
		SourceURL:           sourceURL,
		IsRelevant:          false,
		Confidence:          0.0,
		MatchedStrings:      []string{},
		ClassificationLabel: "irrelevant",
		SimilarityScore:     0.0,
		Language:            language,
		AnalyzedAt:          time.Now().UTC(),
	}
}
