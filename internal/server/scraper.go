package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pramath6095/dark-web-leak-ai/internal/poll"
)

// ScraperInfo describes the scraper's wiring for the health endpoint.
type ScraperInfo struct {
	QueryServiceURL    string
	AnalysisServiceURL string
	TorProxy           string
	PollInterval       time.Duration
}

// ScraperServer exposes control and health endpoints for the poll loop.
type ScraperServer struct {
	loop      *poll.Loop
	info      ScraperInfo
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time
}

// ScraperServerOption configures a ScraperServer.
type ScraperServerOption func(*ScraperServer)

// WithScraperServerLogger sets a custom logger.
func WithScraperServerLogger(logger *slog.Logger) ScraperServerOption {
	return func(s *ScraperServer) {
		s.logger = logger
	}
}

// NewScraperServer constructs the server with middleware and routes.
func NewScraperServer(loop *poll.Loop, info ScraperInfo, opts ...ScraperServerOption) *ScraperServer {
	s := &ScraperServer{
		loop:      loop,
		info:      info,
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

	r.Post("/trigger", s.trigger)
	r.Get("/health", s.health)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *ScraperServer) Handler() http.Handler {
	return s.router
}

// trigger requests an immediate poll cycle. The cycle runs in the
// loop's own goroutine; if one is already in flight this request
// coalesces with it.
func (s *ScraperServer) trigger(w http.ResponseWriter, _ *http.Request) {
	s.loop.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "poll cycle triggered",
	})
}

// scraperHealthResponse reports loop status and wiring.
type scraperHealthResponse struct {
	Status              string     `json:"status"`
	UptimeSeconds       float64    `json:"uptime_seconds"`
	LastPollTime        *time.Time `json:"last_poll_time"`
	CycleRunning        bool       `json:"cycle_running"`
	Stopped             bool       `json:"stopped"`
	QueryServiceURL     string     `json:"query_service_url"`
	AnalysisServiceURL  string     `json:"analysis_service_url"`
	TorProxy            string     `json:"tor_proxy"`
	PollIntervalSeconds float64    `json:"poll_interval_seconds"`
}

func (s *ScraperServer) health(w http.ResponseWriter, _ *http.Request) {
	status := s.loop.Status()
	writeJSON(w, http.StatusOK, scraperHealthResponse{
		Status:              "healthy",
		UptimeSeconds:       time.Since(s.startTime).Seconds(),
		LastPollTime:        status.LastCycle,
		CycleRunning:        status.CycleRunning,
		Stopped:             status.Stopped,
		QueryServiceURL:     s.info.QueryServiceURL,
		AnalysisServiceURL:  s.info.AnalysisServiceURL,
		TorProxy:            s.info.TorProxy,
		PollIntervalSeconds: s.info.PollInterval.Seconds(),
	})
}
