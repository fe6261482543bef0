package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
	"github.com/pramath6095/dark-web-leak-ai/internal/pipeline"
)

// SearchStringSource supplies the current search strings when an
// analyze request does not carry its own. remote.QueryClient satisfies
// this against a separately running query service.
type SearchStringSource interface {
	SearchStrings(ctx context.Context) ([]string, error)
}

// VerdictSink receives verdicts for persistence after each analyzed
// batch. database.Store satisfies this.
type VerdictSink interface {
	SaveReport(ctx context.Context, report model.AnalysisReport) error
}

// AnalysisServer exposes the relevance pipeline over HTTP.
type AnalysisServer struct {
	analyzer  *pipeline.Analyzer
	strings   SearchStringSource
	sink      VerdictSink
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time
}

// AnalysisServerOption configures an AnalysisServer.
type AnalysisServerOption func(*AnalysisServer)

// WithVerdictSink persists every produced verdict to the given sink.
func WithVerdictSink(sink VerdictSink) AnalysisServerOption {
	return func(s *AnalysisServer) {
		s.sink = sink
	}
}

// WithAnalysisServerLogger sets a custom logger.
func WithAnalysisServerLogger(logger *slog.Logger) AnalysisServerOption {
	return func(s *AnalysisServer) {
		s.logger = logger
	}
}

// NewAnalysisServer constructs the server with middleware and routes.
func NewAnalysisServer(analyzer *pipeline.Analyzer, strings SearchStringSource, opts ...AnalysisServerOption) *AnalysisServer {
	s := &AnalysisServer{
		analyzer:  analyzer,
		strings:   strings,
		logger:    slog.Default(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))

	r.Post("/analyze", s.analyze)
	r.Get("/health", s.health)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *AnalysisServer) Handler() http.Handler {
	return s.router
}

// analyzeRequest is the batch submission payload. SearchStrings may be
// omitted, in which case the current set is fetched from the query
// service so the scraper never has to hold a stale copy.
type analyzeRequest struct {
	Pages         []model.PageInput `json:"pages"`
	SearchStrings []string          `json:"search_strings,omitempty"`
}

func (s *AnalysisServer) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "pages must not be empty")
		return
	}

	searchStrings := req.SearchStrings
	if len(searchStrings) == 0 {
		fetched, err := s.strings.SearchStrings(r.Context())
		if err != nil {
			s.logger.Warn("failed to fetch search strings, pages will not match",
				slog.String("error", err.Error()))
		}
		searchStrings = fetched
	}

	report := s.analyzer.AnalyzeBatch(r.Context(), req.Pages, searchStrings)

	if s.sink != nil {
		if err := s.sink.SaveReport(r.Context(), report); err != nil {
			s.logger.Warn("failed to persist verdicts", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *AnalysisServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}
