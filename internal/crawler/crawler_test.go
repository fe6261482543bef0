package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// directCircuits is a CircuitProvider that skips the SOCKS5 proxy and
// connects directly, so tests can use httptest servers.
type directCircuits struct {
	fetchTimeout time.Duration
	probeTimeout time.Duration

	// failProbe makes every probe client fail at the transport level.
	failProbe bool
}

func (d *directCircuits) IsolatedHTTPClient(_ int) (*http.Client, error) {
	timeout := d.fetchTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}, nil
}

func (d *directCircuits) ProbeHTTPClient(_ int) (*http.Client, error) {
	if d.failProbe {
		return &http.Client{Transport: failingTransport{}}, nil
	}
	timeout := d.probeTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}, nil
}

// failingTransport errors on every request, simulating an unreachable
// circuit.
type failingTransport struct{}

func (failingTransport) RoundTrip(_ *http.Request) (*http.Response, error) {
	return nil, errors.New("circuit collapsed")
}

const testOnionHost = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

// TestNormalizeURL tests trailing-slash canonicalization.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"no trailing slash", "http://" + testOnionHost + "/page", "http://" + testOnionHost + "/page"},
		{"trailing slash stripped", "http://" + testOnionHost + "/page/", "http://" + testOnionHost + "/page"},
		{"multiple trailing slashes", "http://" + testOnionHost + "/page///", "http://" + testOnionHost + "/page"},
		{"bare host", "http://" + testOnionHost + "/", "http://" + testOnionHost},
		{"surrounding whitespace", "  http://" + testOnionHost + "/page ", "http://" + testOnionHost + "/page"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeURL(tc.input); got != tc.expected {
				t.Errorf("NormalizeURL(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestValidOnionURL tests host checksum validation on discovered links.
func TestValidOnionURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid v3 host", "http://" + testOnionHost + "/page", true},
		{"valid v3 host without scheme", testOnionHost, true},
		{"valid v3 host behind subdomain", "http://www." + testOnionHost + "/page", true},
		{"corrupted checksum", "http://aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqe.onion/page", false},
		{"v2-length host", "http://expyuzz4wqqyqhjn.onion/page", false},
		{"clearnet host", "http://example.com/page", false},
		{"empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := validOnionURL(tc.input); got != tc.valid {
				t.Errorf("validOnionURL(%q) = %v, expected %v", tc.input, got, tc.valid)
			}
		})
	}
}

// TestExtractOnionLinks tests link extraction from results pages.
func TestExtractOnionLinks(t *testing.T) {
	t.Parallel()

	t.Run("extracts anchor hrefs", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="http://` + testOnionHost + `/leak">result</a>
			<a href="https://` + testOnionHost + `/dump?id=2">result</a>
		</body></html>`

		got := extractOnionLinks(page)
		if len(got) != 2 {
			t.Fatalf("extracted %d links, expected 2: %v", len(got), got)
		}
		if got[0] != "http://"+testOnionHost+"/leak" {
			t.Errorf("got[0] = %q", got[0])
		}
	})

	t.Run("discards links containing search", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<a href="http://` + testOnionHost + `/search?q=next+page">next</a>
			<a href="http://` + testOnionHost + `/leak">result</a>
		</body></html>`

		got := extractOnionLinks(page)
		if len(got) != 1 || got[0] != "http://"+testOnionHost+"/leak" {
			t.Errorf("got %v, expected only the non-search link", got)
		}
	})

	t.Run("ignores onion addresses outside anchors", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
			<p>visit http://` + testOnionHost + `/text-mention</p>
			<a href="http://example.com/clearnet">clearnet</a>
		</body></html>`

		if got := extractOnionLinks(page); len(got) != 0 {
			t.Errorf("got %v, expected no links", got)
		}
	})
}

// TestSeenSet tests atomic check-and-mark deduplication.
func TestSeenSet(t *testing.T) {
	t.Parallel()

	t.Run("first pass keeps, second pass drops", func(t *testing.T) {
		t.Parallel()

		seen := NewSeenSet(nil)
		url := "http://" + testOnionHost + "/page"

		first := seen.FilterAndMark([]string{url})
		if len(first) != 1 {
			t.Fatalf("first pass = %v, expected 1 URL", first)
		}
		second := seen.FilterAndMark([]string{url})
		if len(second) != 0 {
			t.Errorf("second pass = %v, expected empty", second)
		}
	})

	t.Run("trailing slash variants collapse", func(t *testing.T) {
		t.Parallel()

		seen := NewSeenSet(nil)
		got := seen.FilterAndMark([]string{
			"http://" + testOnionHost + "/page",
			"http://" + testOnionHost + "/page/",
		})
		if len(got) != 1 {
			t.Errorf("got %v, expected slash variants to collapse to one", got)
		}
	})

	t.Run("warm-loaded URLs are already seen", func(t *testing.T) {
		t.Parallel()

		url := "http://" + testOnionHost + "/page"
		seen := NewSeenSet([]string{url + "/"})
		if got := seen.FilterAndMark([]string{url}); len(got) != 0 {
			t.Errorf("got %v, expected warm-loaded URL to be filtered", got)
		}
	})
}

// TestDiscover tests engine fan-out, failure isolation, and union dedup.
func TestDiscover(t *testing.T) {
	t.Parallel()

	resultsPage := func(links ...string) string {
		page := "<html><body>"
		for _, link := range links {
			page += `<a href="` + link + `">r</a>`
		}
		return page + "</body></html>"
	}

	t.Run("unions and dedupes across engines", func(t *testing.T) {
		t.Parallel()

		shared := "http://" + testOnionHost + "/shared"
		srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") == "" {
				t.Error("expected query parameter")
			}
			w.Write([]byte(resultsPage(shared, "http://"+testOnionHost+"/only1")))
		}))
		t.Cleanup(srv1.Close)
		srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			// Same page with a trailing slash plus a unique one.
			w.Write([]byte(resultsPage(shared+"/", "http://"+testOnionHost+"/only2")))
		}))
		t.Cleanup(srv2.Close)

		c := New(&directCircuits{}, WithEngines([]string{
			srv1.URL + "/search?q={query}",
			srv2.URL + "/search?q={query}",
		}))

		got, err := c.Discover(context.Background(), "acme leak")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %v, expected 3 unique URLs", got)
		}
		if got[0] != shared {
			t.Errorf("got[0] = %q, expected the shared URL first", got[0])
		}
	})

	t.Run("engine failures leave survivors intact", func(t *testing.T) {
		t.Parallel()

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(resultsPage("http://" + testOnionHost + "/survivor")))
		}))
		t.Cleanup(good.Close)

		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(failing.Close)

		// Third engine: closed port.
		closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		closedURL := closed.URL
		closed.Close()

		c := New(&directCircuits{}, WithEngines([]string{
			failing.URL + "/search?q={query}",
			closedURL + "/search?q={query}",
			good.URL + "/search?q={query}",
		}))

		got, err := c.Discover(context.Background(), "acme leak")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != "http://"+testOnionHost+"/survivor" {
			t.Errorf("got %v, expected the surviving engine's link", got)
		}
	})

	t.Run("hosts failing checksum validation are dropped", func(t *testing.T) {
		t.Parallel()

		// Same base32 payload with the final checksum character
		// changed, plus a v2-length host.
		corrupted := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqe.onion"
		v2Host := "expyuzz4wqqyqhjn.onion"

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(resultsPage(
				"http://"+testOnionHost+"/leak",
				"http://"+corrupted+"/leak",
				"http://"+v2Host+"/leak",
				"http://www."+testOnionHost+"/mirror",
			)))
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{}, WithEngines([]string{srv.URL + "/search?q={query}"}))

		got, err := c.Discover(context.Background(), "acme leak")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			"http://" + testOnionHost + "/leak",
			"http://www." + testOnionHost + "/mirror",
		}
		if len(got) != len(want) {
			t.Fatalf("got %v, expected only the checksum-valid hosts %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got[%d] = %q, expected %q", i, got[i], want[i])
			}
		}
	})

	t.Run("slow engines time out individually", func(t *testing.T) {
		t.Parallel()

		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(400 * time.Millisecond)
			w.Write([]byte(resultsPage("http://" + testOnionHost + "/slow")))
		}))
		t.Cleanup(slow.Close)

		fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(resultsPage("http://" + testOnionHost + "/fast")))
		}))
		t.Cleanup(fast.Close)

		c := New(&directCircuits{},
			WithEngines([]string{
				slow.URL + "/search?q={query}",
				fast.URL + "/search?q={query}",
			}),
			WithSearchTimeout(50*time.Millisecond))

		got, err := c.Discover(context.Background(), "acme leak")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != "http://"+testOnionHost+"/fast" {
			t.Errorf("got %v, expected only the fast engine's link", got)
		}
	})

	t.Run("numEngines caps the fan-out", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Write([]byte(resultsPage()))
		}))
		t.Cleanup(srv.Close)

		engines := []string{
			srv.URL + "/a?q={query}",
			srv.URL + "/b?q={query}",
			srv.URL + "/c?q={query}",
		}
		c := New(&directCircuits{}, WithEngines(engines), WithNumEngines(2))

		if _, err := c.Discover(context.Background(), "acme"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("engines queried %d times, expected 2", calls.Load())
		}
	})
}

// TestFetchAll tests probe semantics and outcome classification.
func TestFetchAll(t *testing.T) {
	t.Parallel()

	t.Run("successful fetch returns raw content", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				return
			}
			w.Write([]byte("<html>leaked data</html>"))
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{})
		results, err := c.FetchAll(context.Background(), []string{srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("got %d results, expected 1", len(results))
		}
		if results[0].Outcome != model.OutcomeRawContent {
			t.Errorf("Outcome = %v, expected raw content", results[0].Outcome)
		}
		if results[0].Content != "<html>leaked data</html>" {
			t.Errorf("Content = %q", results[0].Content)
		}
	})

	t.Run("probe HTTP error skips the fetch as dead link", func(t *testing.T) {
		t.Parallel()

		var gets atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				gets.Add(1)
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{})
		results, err := c.FetchAll(context.Background(), []string{srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Outcome != model.OutcomeDeadLink {
			t.Errorf("Outcome = %v, expected dead link", results[0].Outcome)
		}
		if gets.Load() != 0 {
			t.Errorf("server saw %d GETs, expected the fetch to be skipped", gets.Load())
		}
	})

	t.Run("probe transport failure proceeds to fetch", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("alive after all"))
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{failProbe: true})
		results, err := c.FetchAll(context.Background(), []string{srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Outcome != model.OutcomeRawContent {
			t.Errorf("Outcome = %v, expected raw content despite probe failure", results[0].Outcome)
		}
	})

	t.Run("non-200 fetch is a protocol error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				return // probe passes
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{})
		results, err := c.FetchAll(context.Background(), []string{srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Outcome != model.OutcomeProtocolError {
			t.Errorf("Outcome = %v, expected protocol error", results[0].Outcome)
		}
	})

	t.Run("slow fetch times out", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				return
			}
			time.Sleep(300 * time.Millisecond)
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{fetchTimeout: 50 * time.Millisecond})
		results, err := c.FetchAll(context.Background(), []string{srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Outcome != model.OutcomeTimeout {
			t.Errorf("Outcome = %v, expected timeout", results[0].Outcome)
		}
	})

	t.Run("unreachable host is a connection error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		c := New(&directCircuits{failProbe: true})
		results, err := c.FetchAll(context.Background(), []string{url})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Outcome != model.OutcomeConnectionError {
			t.Errorf("Outcome = %v, expected connection error", results[0].Outcome)
		}
	})

	t.Run("fetch limit caps attempted URLs", func(t *testing.T) {
		t.Parallel()

		var gets atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				gets.Add(1)
			}
			w.Write([]byte("ok"))
		}))
		t.Cleanup(srv.Close)

		c := New(&directCircuits{}, WithFetchLimit(2))
		urls := []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"}
		results, err := c.FetchAll(context.Background(), urls)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("got %d results, expected 2", len(results))
		}
		if gets.Load() != 2 {
			t.Errorf("server saw %d GETs, expected 2", gets.Load())
		}
	})
}

// TestStreamIDsAdvance verifies every task reserves a fresh circuit.
func TestStreamIDsAdvance(t *testing.T) {
	t.Parallel()

	c := New(&directCircuits{})
	a := c.nextStreamID()
	b := c.nextStreamID()
	if a == b {
		t.Errorf("consecutive stream IDs equal: %d", a)
	}
}
