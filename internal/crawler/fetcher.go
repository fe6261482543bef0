package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// maxBodyBytes caps how much of a page body is read. Onion services
// occasionally serve unbounded streams; 2 MiB is far beyond any text page
// the relevance pipeline can use.
const maxBodyBytes = 2 << 20

// FetchAll downloads the given URLs concurrently and returns one
// FetchResult per URL, in input order. At most fetchLimit URLs are
// attempted; the rest are silently dropped (they will usually resurface
// in a later discovery).
//
// Each URL gets a fresh circuit and a HEAD liveness probe before the full
// GET. The probe's verdict is asymmetric on purpose: an HTTP error status
// proves the service is up and the page is gone, so the fetch is skipped
// as a dead link - but a probe transport failure proves nothing (many
// onion services reject HEAD outright), so the GET proceeds anyway.
func (c *Crawler) FetchAll(ctx context.Context, urls []string) ([]model.FetchResult, error) {
	if len(urls) > c.fetchLimit {
		urls = urls[:c.fetchLimit]
	}

	c.logger.InfoContext(ctx, "fetching pages",
		slog.Int("urls", len(urls)),
		slog.Int("workers", c.maxWorkers))

	results := make([]model.FetchResult, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = c.fetchOne(ctx, url, c.nextStreamID())
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetched := 0
	for _, r := range results {
		if r.Outcome.OK() {
			fetched++
		}
	}
	c.logger.InfoContext(ctx, "fetch complete",
		slog.Int("fetched", fetched),
		slog.Int("attempted", len(urls)))
	return results, nil
}

// fetchOne probes and fetches a single URL on its own circuit.
func (c *Crawler) fetchOne(ctx context.Context, url string, streamID int) model.FetchResult {
	if !c.probe(ctx, url, streamID) {
		return model.FetchResult{URL: url, Outcome: model.OutcomeDeadLink}
	}

	client, err := c.circuits.IsolatedHTTPClient(streamID)
	if err != nil {
		return model.FetchResult{URL: url, Outcome: model.OutcomeConnectionError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.FetchResult{URL: url, Outcome: model.OutcomeUnknown}
	}
	applyBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return model.FetchResult{URL: url, Outcome: classifyFetchError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.FetchResult{URL: url, Outcome: model.OutcomeProtocolError}
	}

	body, err := readBody(resp)
	if err != nil {
		return model.FetchResult{URL: url, Outcome: model.OutcomeProtocolError}
	}

	c.logger.DebugContext(ctx, "page fetched",
		slog.Int("stream", streamID),
		slog.Int("bytes", len(body)))
	return model.FetchResult{URL: url, Outcome: model.OutcomeRawContent, Content: body}
}

// probe performs the HEAD liveness pre-check. It reports false only when
// the service answered with an HTTP error status; transport failures
// report true so the full GET still gets its chance.
func (c *Crawler) probe(ctx context.Context, url string, streamID int) bool {
	client, err := c.circuits.ProbeHTTPClient(streamID)
	if err != nil {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return true
	}
	applyBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}

// classifyFetchError maps a transport error onto the outcome taxonomy.
// The raw error never leaves the crawler: it can embed onion hostnames
// and proxy internals that must stay out of results and logs.
func classifyFetchError(err error) model.FetchOutcome {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return model.OutcomeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.OutcomeTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return model.OutcomeConnectionError
	}

	// SOCKS-level failures surface as opaque error strings from the
	// proxy dialer.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return model.OutcomeTimeout
	case strings.Contains(msg, "connect") || strings.Contains(msg, "refused") ||
		strings.Contains(msg, "unreachable") || strings.Contains(msg, "socks"):
		return model.OutcomeConnectionError
	default:
		return model.OutcomeUnknown
	}
}

// readBody reads a response body up to maxBodyBytes.
func readBody(resp *http.Response) (string, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
