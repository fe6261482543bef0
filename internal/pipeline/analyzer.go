package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// Analyzer runs the full relevance pipeline over scraped pages.
type Analyzer struct {
	// classifier provides zero-shot classification.
	classifier Classifier

	// embedder provides semantic similarity scoring.
	embedder Embedder

	// detector identifies the page language.
	detector *LanguageDetector

	// classificationThreshold and similarityThreshold gate the two
	// relevance signals.
	classificationThreshold float64
	similarityThreshold     float64

	// classifyChunkTokens and maxClassifyChunks size the
	// classification chunking.
	classifyChunkTokens int
	maxClassifyChunks   int

	// similarityChunkTokens and similarityChunkOverlap size the
	// sliding windows embedded for similarity.
	similarityChunkTokens  int
	similarityChunkOverlap int

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAnalyzerLogger sets a custom logger for the analyzer.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithThresholds overrides the classification and similarity score
// thresholds a page must clear to be judged relevant.
func WithThresholds(classification, similarity float64) AnalyzerOption {
	return func(a *Analyzer) {
		a.classificationThreshold = classification
		a.similarityThreshold = similarity
	}
}

// WithClassifyChunking sets the token budget per classification chunk
// and the maximum number of chunks classified per page.
func WithClassifyChunking(chunkTokens, maxChunks int) AnalyzerOption {
	return func(a *Analyzer) {
		a.classifyChunkTokens = chunkTokens
		a.maxClassifyChunks = maxChunks
	}
}

// WithSimilarityChunking sets the window size and overlap, in tokens,
// of the content windows embedded for similarity scoring.
func WithSimilarityChunking(windowTokens, overlap int) AnalyzerOption {
	return func(a *Analyzer) {
		a.similarityChunkTokens = windowTokens
		a.similarityChunkOverlap = overlap
	}
}

// NewAnalyzer creates an analyzer over the given inference backends.
// The language detector is constructed here because it is an in-process
// capability with no configuration of its own.
func NewAnalyzer(classifier Classifier, embedder Embedder, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		classifier:              classifier,
		embedder:                embedder,
		detector:                NewLanguageDetector(),
		classificationThreshold: defaultClassificationThreshold,
		similarityThreshold:     defaultSimilarityThreshold,
		classifyChunkTokens:     defaultClassifyChunkTokens,
		maxClassifyChunks:       defaultMaxClassifyChunks,
		similarityChunkTokens:   defaultSimilarityChunkTokens,
		similarityChunkOverlap:  defaultSimilarityChunkOverlap,
		logger:                  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzePage runs every pipeline stage on a single page and returns
// its verdict. Inference failures downgrade the page to an irrelevant
// verdict rather than failing the batch: a page we could not analyze
// is a page we cannot call relevant.
func (a *Analyzer) AnalyzePage(ctx context.Context, page model.PageInput, searchStrings []string) model.PageVerdict {
	cleanText := CleanHTML(page.Text)

	matched := Prefilter(cleanText, searchStrings)

	// Language detection always runs so even rejected pages record
	// what language they were written in.
	language := a.detector.Detect(cleanText)

	if len(matched) == 0 {
		a.logVerdict(page.SourceURL, nil, irrelevantLabel, 0, 0, false, language)
		return model.IrrelevantVerdict(page.SourceURL, language)
	}

	label, classificationConfidence, err := chunkedClassify(ctx, a.classifier, cleanText, a.classifyChunkTokens, a.maxClassifyChunks)
	if err != nil {
		a.logger.Warn("classification failed, downgrading page to irrelevant",
			slog.String("source_url", page.SourceURL),
			slog.String("error", err.Error()))
		return model.IrrelevantVerdict(page.SourceURL, language)
	}

	similarityScore, err := maxSimilarity(ctx, a.embedder, cleanText, searchStrings,
		a.similarityChunkTokens, a.similarityChunkOverlap)
	if err != nil {
		a.logger.Warn("similarity scoring failed, downgrading page to irrelevant",
			slog.String("source_url", page.SourceURL),
			slog.String("error", err.Error()))
		return model.IrrelevantVerdict(page.SourceURL, language)
	}

	isRelevant, confidence := decideRelevance(label, classificationConfidence, similarityScore,
		a.classificationThreshold, a.similarityThreshold)

	var summary string
	if isRelevant {
		summary = fmt.Sprintf("Content appears to contain data referencing %s. Classified as %s.",
			strings.Join(matched, ", "), label)
	}

	a.logVerdict(page.SourceURL, matched, label, confidence, similarityScore, isRelevant, language)

	return model.PageVerdict{
		SourceURL:           page.SourceURL,
		IsRelevant:          isRelevant,
		Confidence:          confidence,
		MatchedStrings:      matched,
		ClassificationLabel: label,
		SimilarityScore:     roundScore(similarityScore),
		Language:            language,
		Summary:             summary,
		AnalyzedAt:          time.Now().UTC(),
	}
}

// AnalyzeBatch runs AnalyzePage over every page and aggregates the
// verdicts into a report.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, pages []model.PageInput, searchStrings []string) model.AnalysisReport {
	results := make([]model.PageVerdict, 0, len(pages))
	relevant := 0
	for _, page := range pages {
		verdict := a.AnalyzePage(ctx, page, searchStrings)
		if verdict.IsRelevant {
			relevant++
		}
		results = append(results, verdict)
	}

	return model.AnalysisReport{
		Results:       results,
		Total:         len(results),
		RelevantCount: relevant,
	}
}

func (a *Analyzer) logVerdict(sourceURL string, matched []string, label string, confidence, similarity float64, isRelevant bool, language string) {
	a.logger.Info("page analyzed",
		slog.String("source_url", sourceURL),
		slog.Int("matched_strings", len(matched)),
		slog.String("classification_label", label),
		slog.Float64("confidence", confidence),
		slog.Float64("similarity_score", similarity),
		slog.Bool("is_relevant", isRelevant),
		slog.String("language_detected", language))
}
