package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
	"github.com/pramath6095/dark-web-leak-ai/internal/queries"
	"github.com/pramath6095/dark-web-leak-ai/internal/remote"
)

// defaultQueriesPerBatch is how many queries one GET /queries serves.
const defaultQueriesPerBatch = 5

// QueryServer exposes the query supply over HTTP.
type QueryServer struct {
	supply    *queries.Supply
	router    chi.Router
	logger    *slog.Logger
	batchSize int
	startTime time.Time
}

// QueryServerOption configures a QueryServer.
type QueryServerOption func(*QueryServer)

// WithQueryBatchSize overrides how many queries are served per request.
func WithQueryBatchSize(n int) QueryServerOption {
	return func(s *QueryServer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithQueryServerLogger sets a custom logger.
func WithQueryServerLogger(logger *slog.Logger) QueryServerOption {
	return func(s *QueryServer) {
		s.logger = logger
	}
}

// NewQueryServer constructs the server with middleware and routes.
func NewQueryServer(supply *queries.Supply, opts ...QueryServerOption) *QueryServer {
	s := &QueryServer{
		supply:    supply,
		logger:    slog.Default(),
		batchSize: defaultQueriesPerBatch,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))

	r.Post("/configure", s.configure)
	r.Get("/queries", s.queries)
	r.Get("/search-strings", s.searchStrings)
	r.Get("/health", s.health)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *QueryServer) Handler() http.Handler {
	return s.router
}

func (s *QueryServer) configure(w http.ResponseWriter, r *http.Request) {
	var profile model.TargetProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if profile.Name == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}

	nQueries, nStrings, err := s.supply.Configure(r.Context(), profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, remote.ConfigureResult{
		Message:            fmt.Sprintf("Configured for '%s'", profile.Name),
		QueriesGenerated:   nQueries,
		SearchStringsCount: nStrings,
	})
}

func (s *QueryServer) queries(w http.ResponseWriter, r *http.Request) {
	batch, err := s.supply.NextBatch(r.Context(), s.batchSize)
	if err != nil {
		if errors.Is(err, queries.ErrNotConfigured) {
			writeError(w, http.StatusConflict, "service not configured, POST /configure first")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *QueryServer) searchStrings(w http.ResponseWriter, r *http.Request) {
	strings, err := s.supply.SearchStrings()
	if err != nil {
		if errors.Is(err, queries.ErrNotConfigured) {
			writeError(w, http.StatusConflict, "service not configured, POST /configure first")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"search_strings": strings})
}

// queryHealthResponse extends the supply stats with liveness fields.
type queryHealthResponse struct {
	Status string `json:"status"`
	queries.Stats
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *QueryServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, queryHealthResponse{
		Status:        "healthy",
		Stats:         s.supply.Stats(),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	})
}
