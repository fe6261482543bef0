package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/crawler"
	"github.com/pramath6095/dark-web-leak-ai/internal/dispatcher"
	"github.com/pramath6095/dark-web-leak-ai/internal/model"
	"github.com/pramath6095/dark-web-leak-ai/internal/queries"
)

// defaultInterval is the pause between crawl cycles.
const defaultInterval = 5 * time.Minute

// QuerySource supplies query batches. remote.QueryClient is the production
// implementation; an in-process queries.Supply can also back it directly.
type QuerySource interface {
	NextQueries(ctx context.Context) (queries.Batch, error)
}

// Crawler is the discovery and fetch surface the loop drives.
type Crawler interface {
	Discover(ctx context.Context, query string) ([]string, error)
	FetchAll(ctx context.Context, urls []string) ([]model.FetchResult, error)
}

// Dispatcher forwards fetched pages for analysis.
type Dispatcher interface {
	Dispatch(ctx context.Context, results []model.FetchResult) []dispatcher.BatchOutcome
}

// Status is a point-in-time snapshot of loop state for health reporting.
type Status struct {
	CycleRunning bool       `json:"cycle_running"`
	LastCycle    *time.Time `json:"last_poll_time"`
	Stopped      bool       `json:"stopped"`
}

// Loop periodically runs crawl cycles until the query supply is exhausted
// or the context is cancelled.
type Loop struct {
	source     QuerySource
	crawler    Crawler
	dispatcher Dispatcher
	seen       *crawler.SeenSet
	interval   time.Duration
	logger     *slog.Logger

	// markSeen, when set, persists newly claimed URLs.
	markSeen func(ctx context.Context, urls []string)

	mu        sync.Mutex
	running   bool
	lastCycle *time.Time
	stopped   bool

	// trigger wakes the loop for an immediate cycle.
	trigger chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the pause between cycles.
func WithInterval(interval time.Duration) Option {
	return func(l *Loop) {
		l.interval = interval
	}
}

// WithLogger sets the logger used for loop activity.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithSeenPersistence registers a callback invoked with every batch of
// newly claimed URLs, letting the store remember them across restarts.
func WithSeenPersistence(fn func(ctx context.Context, urls []string)) Option {
	return func(l *Loop) {
		l.markSeen = fn
	}
}

// New creates a Loop wiring the query source, crawler, and dispatcher
// together around a shared seen-URL set.
func New(source QuerySource, c Crawler, d Dispatcher, seen *crawler.SeenSet, opts ...Option) *Loop {
	l := &Loop{
		source:     source,
		crawler:    c,
		dispatcher: d,
		seen:       seen,
		interval:   defaultInterval,
		logger:     slog.Default(),
		trigger:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes crawl cycles until the context is cancelled or the query
// supply reports exhaustion. It blocks; callers run it in a goroutine.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.InfoContext(ctx, "poll loop started",
		slog.Duration("interval", l.interval))

	for {
		stop := l.RunCycle(ctx)
		if stop {
			l.mu.Lock()
			l.stopped = true
			l.mu.Unlock()
			l.logger.InfoContext(ctx, "query supply exhausted, poll loop stopped")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		case <-l.trigger:
			l.logger.InfoContext(ctx, "cycle triggered manually")
		}
	}
}

// Trigger requests an immediate cycle. It never blocks; if a trigger is
// already pending or a cycle is running, the request coalesces.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of loop state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{
		CycleRunning: l.running,
		LastCycle:    l.lastCycle,
		Stopped:      l.stopped,
	}
}

// RunCycle runs one full cycle: fetch queries, then per query discover,
// filter, fetch, and dispatch. Returns true when the loop should stop
// because the query supply is exhausted.
//
// Per-query failures are absorbed: a query whose discovery fails
// contributes nothing and the cycle moves on. Only context cancellation
// aborts the cycle early.
func (l *Loop) RunCycle(ctx context.Context) bool {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		l.logger.WarnContext(ctx, "cycle already running, skipping")
		return false
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		now := time.Now()
		l.mu.Lock()
		l.running = false
		l.lastCycle = &now
		l.mu.Unlock()
	}()

	batch, err := l.source.NextQueries(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "could not reach query source",
			slog.String("error", err.Error()))
		return false
	}
	if len(batch.Queries) == 0 {
		if batch.Exhausted {
			return true
		}
		l.logger.InfoContext(ctx, "no queries this cycle")
		return false
	}

	for _, query := range batch.Queries {
		if ctx.Err() != nil {
			return false
		}
		l.processQuery(ctx, query)
	}

	l.logger.InfoContext(ctx, "crawl cycle complete",
		slog.Int("queries", len(batch.Queries)))
	return false
}

// processQuery runs discovery, dedup, fetch, and dispatch for one query.
func (l *Loop) processQuery(ctx context.Context, query string) {
	l.logger.InfoContext(ctx, "processing query", slog.String("query", query))

	urls, err := l.crawler.Discover(ctx, query)
	if err != nil {
		l.logger.WarnContext(ctx, "discovery failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return
	}
	if len(urls) == 0 {
		l.logger.InfoContext(ctx, "no URLs discovered", slog.String("query", query))
		return
	}

	fresh := l.seen.FilterAndMark(urls)
	l.logger.InfoContext(ctx, "URLs discovered",
		slog.Int("found", len(urls)),
		slog.Int("new", len(fresh)))
	if len(fresh) == 0 {
		return
	}
	if l.markSeen != nil {
		l.markSeen(ctx, fresh)
	}

	results, err := l.crawler.FetchAll(ctx, fresh)
	if err != nil {
		l.logger.WarnContext(ctx, "fetch failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return
	}

	l.dispatcher.Dispatch(ctx, results)
}
