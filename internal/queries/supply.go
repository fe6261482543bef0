package queries

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// Supply default settings.
const (
	defaultMaxRounds          = 5
	defaultDuplicateThreshold = 0.5
)

// Batch is one served batch of queries.
type Batch struct {
	// Queries are the queries to run, each served exactly once.
	Queries []string `json:"queries"`

	// Remaining is the number of generated-but-unserved queries left.
	Remaining int `json:"remaining"`

	// Exhausted reports that the supply can produce nothing further.
	// It is only true once every generated query has been served AND no
	// new round can add novel ones. An empty Queries with Exhausted set
	// is the consumer's stop signal.
	Exhausted bool `json:"exhausted"`
}

// Stats is a point-in-time snapshot of supply state for health reporting.
type Stats struct {
	Configured      bool   `json:"configured"`
	TargetName      string `json:"company_name"`
	TotalQueries    int    `json:"total_queries"`
	ServedQueries   int    `json:"served_queries"`
	SearchStrings   int    `json:"search_strings_count"`
	GenerationRound int    `json:"generation_round"`
	Exhausted       bool   `json:"exhausted"`
}

// Supply owns the query lifecycle for one monitored organization.
//
// Queries accumulate across generation rounds in insertion order and are
// deduplicated on entry, so a query can exist in the supply only once and
// is served at most once. When a batch is requested and no unserved queries
// remain, the supply generates a new round first; only when generation can
// add nothing further does it declare itself exhausted. The exhausted flag
// is sticky until the next Configure.
//
// All methods are safe for concurrent use. The mutex is held across
// generation so two concurrent batch requests cannot trigger duplicate
// rounds or double-serve a query.
type Supply struct {
	mu sync.Mutex

	producer *Producer

	// maxRounds caps how many times the backend is asked for queries.
	maxRounds int

	// duplicateThreshold is the quality gate: when a round's duplicate
	// ratio exceeds it, the supply is marked exhausted.
	duplicateThreshold float64

	logger *slog.Logger

	// Mutable state, replaced wholesale by Configure.
	configured    bool
	profile       model.TargetProfile
	all           []string
	known         map[string]bool
	served        map[string]bool
	searchStrings []string
	round         int
	exhausted     bool
}

// SupplyOption configures a Supply.
type SupplyOption func(*Supply)

// WithMaxRounds caps the number of generation rounds.
func WithMaxRounds(rounds int) SupplyOption {
	return func(s *Supply) {
		s.maxRounds = rounds
	}
}

// WithDuplicateThreshold sets the quality-gate duplicate ratio.
func WithDuplicateThreshold(threshold float64) SupplyOption {
	return func(s *Supply) {
		s.duplicateThreshold = threshold
	}
}

// WithSupplyLogger sets the logger used for supply activity.
func WithSupplyLogger(logger *slog.Logger) SupplyOption {
	return func(s *Supply) {
		s.logger = logger
	}
}

// NewSupply creates a Supply that generates through the given producer.
func NewSupply(producer *Producer, opts ...SupplyOption) *Supply {
	s := &Supply{
		producer:           producer,
		maxRounds:          defaultMaxRounds,
		duplicateThreshold: defaultDuplicateThreshold,
		logger:             slog.Default(),
		known:              make(map[string]bool),
		served:             make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure replaces all supply state with a fresh run for the given
// profile and performs the initial generation round. Queries, served marks,
// search strings, the round counter, and the exhausted flag are all reset:
// reconfiguring mid-run starts the target over from scratch.
//
// When the generation backend fails, deterministic fallback queries derived
// from the profile are used instead and the round still counts, so a broken
// backend degrades coverage rather than halting monitoring.
//
// Returns the number of queries and search strings now available.
func (s *Supply) Configure(ctx context.Context, profile model.TargetProfile) (int, int, error) {
	if profile.IsZero() {
		return 0, 0, ErrEmptyProfile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.configured = true
	s.profile = profile
	s.all = nil
	s.known = make(map[string]bool)
	s.served = make(map[string]bool)
	s.searchStrings = nil
	s.round = 0
	s.exhausted = false

	generated, err := s.producer.InitialQueries(ctx, profile)
	if err != nil {
		s.logger.ErrorContext(ctx, "initial query generation failed, using fallback queries",
			slog.String("target", profile.Name),
			slog.String("error", err.Error()))
		generated = FallbackQueries(profile)
	}
	added := s.addLocked(generated)
	s.round = 1

	strs, err := s.producer.SearchStrings(ctx, profile)
	if err != nil {
		s.logger.ErrorContext(ctx, "search string generation failed, using derived basics",
			slog.String("target", profile.Name),
			slog.String("error", err.Error()))
	}
	s.searchStrings = strs

	s.logger.InfoContext(ctx, "query supply configured",
		slog.String("target", profile.Name),
		slog.Int("queries", added),
		slog.Int("search_strings", len(strs)))

	return len(s.all), len(s.searchStrings), nil
}

// NextBatch returns up to n unserved queries and marks them served.
//
// When the unserved pool is empty and the supply is not yet exhausted, a new
// generation round runs first, so emptiness is only ever reported after an
// attempt to refill. The returned batch's Exhausted field is the consumer's
// stop signal.
func (s *Supply) NextBatch(ctx context.Context, n int) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return Batch{}, ErrNotConfigured
	}

	unserved := s.unservedLocked()
	if len(unserved) == 0 && !s.exhausted {
		s.generateMoreLocked(ctx)
		unserved = s.unservedLocked()
	}

	if n > len(unserved) {
		n = len(unserved)
	}
	batch := unserved[:n]
	for _, q := range batch {
		s.served[q] = true
	}
	remaining := len(unserved) - n

	s.logger.InfoContext(ctx, "serving query batch",
		slog.Int("queries", len(batch)),
		slog.Int("remaining", remaining),
		slog.Bool("exhausted", s.exhausted))

	return Batch{
		Queries:   batch,
		Remaining: remaining,
		Exhausted: s.exhausted && remaining == 0,
	}, nil
}

// SearchStrings returns the matching strings for the configured target.
func (s *Supply) SearchStrings() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return nil, ErrNotConfigured
	}
	out := make([]string, len(s.searchStrings))
	copy(out, s.searchStrings)
	return out, nil
}

// Stats returns a snapshot of supply state for health reporting.
func (s *Supply) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Configured:      s.configured,
		TargetName:      s.profile.Name,
		TotalQueries:    len(s.all),
		ServedQueries:   len(s.served),
		SearchStrings:   len(s.searchStrings),
		GenerationRound: s.round,
		Exhausted:       s.exhausted,
	}
}

// generateMoreLocked runs one follow-up generation round.
// The caller must hold the mutex.
//
// The round counter advances and the quality gate applies regardless of
// what the backend returned: a round whose duplicate ratio exceeds the
// threshold, a backend failure, or hitting the round cap all mark the
// supply exhausted.
func (s *Supply) generateMoreLocked(ctx context.Context) {
	if s.round >= s.maxRounds {
		s.logger.InfoContext(ctx, "reached max generation rounds",
			slog.Int("rounds", s.maxRounds))
		s.exhausted = true
		return
	}

	generated, err := s.producer.MoreQueries(ctx, s.profile, s.all)
	if err != nil {
		s.logger.ErrorContext(ctx, "follow-up query generation failed",
			slog.String("error", err.Error()))
		s.exhausted = true
		return
	}

	total := len(generated)
	added := s.addLocked(generated)
	s.round++

	duplicateRatio := float64(total-added) / float64(max(total, 1))
	s.logger.InfoContext(ctx, "generation round complete",
		slog.Int("round", s.round),
		slog.Int("generated", total),
		slog.Int("new", added),
		slog.Float64("duplicate_ratio", duplicateRatio))

	if duplicateRatio > s.duplicateThreshold {
		s.logger.InfoContext(ctx, "duplicate ratio exceeds threshold, supply exhausted",
			slog.Float64("duplicate_ratio", duplicateRatio),
			slog.Float64("threshold", s.duplicateThreshold))
		s.exhausted = true
	}
}

// addLocked inserts queries that are not already known, preserving order.
// Returns the number of genuinely new queries. The caller must hold the
// mutex.
func (s *Supply) addLocked(queries []string) int {
	added := 0
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" || s.known[q] {
			continue
		}
		s.known[q] = true
		s.all = append(s.all, q)
		added++
	}
	return added
}

// unservedLocked returns queries not yet served, in insertion order.
// The caller must hold the mutex.
func (s *Supply) unservedLocked() []string {
	out := make([]string, 0, len(s.all)-len(s.served))
	for _, q := range s.all {
		if !s.served[q] {
			out = append(out, q)
		}
	}
	return out
}
