package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Crawler default settings.
const (
	defaultMaxWorkers    = 3
	defaultNumEngines    = 17
	defaultFetchLimit    = 20
	defaultSearchTimeout = 40 * time.Second
)

// CircuitProvider supplies HTTP clients bound to isolated Tor circuits.
// tor.Client is the production implementation; tests substitute a direct
// provider.
type CircuitProvider interface {
	// IsolatedHTTPClient returns a client with the full fetch timeout on
	// the circuit of the given stream ID.
	IsolatedHTTPClient(streamID int) (*http.Client, error)

	// ProbeHTTPClient returns a client with the short probe timeout on
	// the circuit of the given stream ID.
	ProbeHTTPClient(streamID int) (*http.Client, error)
}

// Crawler discovers .onion URLs via dark-web search engines and fetches
// their content, with every concurrent task on its own Tor circuit.
type Crawler struct {
	// circuits provides per-stream HTTP clients.
	circuits CircuitProvider

	// streamIDs hands out a fresh stream ID per task. It only ever
	// increases, so no two tasks in the process lifetime share a circuit.
	streamIDs atomic.Int64

	// maxWorkers bounds concurrent engine queries and page fetches.
	maxWorkers int

	// numEngines caps how many search engines one discovery queries.
	numEngines int

	// fetchLimit caps how many URLs one FetchAll call downloads.
	fetchLimit int

	// searchTimeout bounds a single engine query. Slow engines time
	// out individually without stalling the rest of the discovery.
	searchTimeout time.Duration

	// engines are the endpoint templates to query.
	engines []string

	logger *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithMaxWorkers bounds concurrent engine queries and page fetches.
func WithMaxWorkers(workers int) CrawlerOption {
	return func(c *Crawler) {
		c.maxWorkers = workers
	}
}

// WithNumEngines caps how many search engines a discovery queries.
func WithNumEngines(n int) CrawlerOption {
	return func(c *Crawler) {
		c.numEngines = n
	}
}

// WithFetchLimit caps how many URLs one FetchAll call downloads.
func WithFetchLimit(limit int) CrawlerOption {
	return func(c *Crawler) {
		c.fetchLimit = limit
	}
}

// WithSearchTimeout bounds how long a single engine query may take.
func WithSearchTimeout(d time.Duration) CrawlerOption {
	return func(c *Crawler) {
		c.searchTimeout = d
	}
}

// WithEngines replaces the engine endpoint list. Used by tests and by
// deployments that maintain their own engine inventory.
func WithEngines(engines []string) CrawlerOption {
	return func(c *Crawler) {
		c.engines = engines
	}
}

// WithLogger sets the logger used for crawl activity.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler using the given circuit provider.
func New(circuits CircuitProvider, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		circuits:      circuits,
		maxWorkers:    defaultMaxWorkers,
		numEngines:    defaultNumEngines,
		fetchLimit:    defaultFetchLimit,
		searchTimeout: defaultSearchTimeout,
		engines:       searchEngines,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nextStreamID reserves a fresh circuit identifier.
func (c *Crawler) nextStreamID() int {
	return int(c.streamIDs.Add(1))
}

// Discover queries the configured search engines for the given query and
// returns the union of extracted .onion links, normalized and deduplicated
// in first-seen order.
//
// Engine failures are isolated: an engine that times out, errors, or
// returns a non-200 status contributes nothing, and the union of the
// surviving engines is still returned. Discovery as a whole only fails on
// context cancellation.
func (c *Crawler) Discover(ctx context.Context, query string) ([]string, error) {
	engines := c.engines
	if c.numEngines < len(engines) {
		engines = engines[:c.numEngines]
	}

	c.logger.InfoContext(ctx, "discovering URLs",
		slog.String("query", query),
		slog.Int("engines", len(engines)),
		slog.Int("workers", c.maxWorkers))

	// Each goroutine writes only its own slot, so no lock is needed.
	results := make([][]string, len(engines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for i, endpoint := range engines {
		g.Go(func() error {
			results[i] = c.queryEngine(ctx, endpoint, query, c.nextStreamID())
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Union in engine order, deduplicated by normalized URL. Hosts
	// that fail v3 checksum validation are dropped here, before any
	// fetch is attempted.
	seen := make(map[string]bool)
	var unique []string
	for _, links := range results {
		for _, link := range links {
			normalized := NormalizeURL(link)
			if normalized == "" || seen[normalized] {
				continue
			}
			seen[normalized] = true
			if !validOnionURL(normalized) {
				c.logger.DebugContext(ctx, "dropping invalid onion host",
					slog.String("url", normalized))
				continue
			}
			unique = append(unique, normalized)
		}
	}

	c.logger.InfoContext(ctx, "discovery complete",
		slog.String("query", query),
		slog.Int("unique_urls", len(unique)))
	return unique, nil
}

// queryEngine fetches one engine's results page and extracts its links.
// All failures collapse to an empty contribution.
func (c *Crawler) queryEngine(ctx context.Context, endpoint, query string, streamID int) []string {
	host := engineHost(endpoint)

	if c.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.searchTimeout)
		defer cancel()
	}

	client, err := c.circuits.IsolatedHTTPClient(streamID)
	if err != nil {
		c.logger.WarnContext(ctx, "engine circuit setup failed",
			slog.String("engine", host),
			slog.String("error", err.Error()))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, engineURL(endpoint, query), nil)
	if err != nil {
		return nil
	}
	applyBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "engine request failed",
			slog.String("engine", host),
			slog.Int("stream", streamID))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "engine returned error status",
			slog.String("engine", host),
			slog.Int("status", resp.StatusCode))
		return nil
	}

	body, err := readBody(resp)
	if err != nil {
		return nil
	}

	links := extractOnionLinks(body)
	c.logger.DebugContext(ctx, "engine results parsed",
		slog.String("engine", host),
		slog.Int("links", len(links)))
	return links
}
