package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror typical Tor network characteristics: connections
// cross multiple relay hops, so timeouts are generous, and concurrency
// is kept low to avoid exhausting the local daemon's circuit budget.
const (
	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// 127.0.0.1 avoids DNS/IPv6 resolution surprises with "localhost".
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultProbeTimeout bounds the liveness pre-check. It is
	// deliberately much shorter than the full-fetch timeout: the probe
	// exists to fail fast on dead services.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultFetchTimeout bounds a full page fetch through Tor.
	DefaultFetchTimeout = 45 * time.Second

	// DefaultSearchTimeout bounds one search-engine query.
	DefaultSearchTimeout = 40 * time.Second

	// DefaultMaxWorkers limits concurrent discovery/fetch tasks.
	// Each task holds its own Tor circuit, a limited resource.
	DefaultMaxWorkers = 3

	// DefaultNumEngines is how many search backends to query per cycle.
	DefaultNumEngines = 17

	// DefaultFetchLimit caps how many discovered URLs are fetched per
	// query. Discovery on a hostile network routinely surfaces far more
	// candidates than are worth paying circuit time for.
	DefaultFetchLimit = 20

	// DefaultBatchSize is the number of pages per analysis batch.
	DefaultBatchSize = 5

	// DefaultPollInterval is the delay between scrape cycles.
	DefaultPollInterval = 5 * time.Minute

	// DefaultQueriesPerBatch is how many queries the supply hands out
	// per request.
	DefaultQueriesPerBatch = 5

	// DefaultInitialQueryCount is how many queries the first generation
	// round asks for.
	DefaultInitialQueryCount = 20

	// DefaultMaxGenerationRounds caps generation rounds per target.
	// Repeated generation failures still terminate via this cap.
	DefaultMaxGenerationRounds = 5

	// DefaultDuplicateThreshold is the quality-gate cutoff: when more
	// than this fraction of a round's queries are duplicates, the
	// supply is declared exhausted.
	DefaultDuplicateThreshold = 0.5

	// DefaultSimilarityThreshold is the semantic-similarity relevance cutoff.
	DefaultSimilarityThreshold = 0.75

	// DefaultConfidenceThreshold is the classification relevance cutoff.
	DefaultConfidenceThreshold = 0.65

	// DefaultChunkSize is the similarity window size in tokens.
	DefaultChunkSize = 400

	// DefaultChunkOverlap is the similarity window overlap in tokens.
	DefaultChunkOverlap = 50

	// DefaultClassifyChunkTokens is the classification chunk size.
	DefaultClassifyChunkTokens = 512

	// DefaultMaxClassifyChunks caps how many chunks are classified per page.
	DefaultMaxClassifyChunks = 3

	// DefaultClassificationLabels is the comma-separated label set for
	// zero-shot classification. "irrelevant" must be present: it is the
	// rejection label the fusion step keys on.
	DefaultClassificationLabels = "credential_leak,database_dump,internal_document,general_mention,irrelevant"

	// DefaultGenerationURL is the chat-completions endpoint used for
	// query generation. Any OpenAI-compatible server works here.
	DefaultGenerationURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultGenerationModel is the model identifier sent with
	// generation requests.
	DefaultGenerationModel = "meta-llama/llama-3.3-70b-instruct"

	// DefaultClassifierURL is the hosted zero-shot classification endpoint.
	DefaultClassifierURL = "https://router.huggingface.co/hf-inference/models/MoritzLaurer/bge-m3-zeroshot-v2.0"

	// DefaultEmbeddingURL is the hosted sentence-similarity endpoint.
	DefaultEmbeddingURL = "https://router.huggingface.co/hf-inference/models/BAAI/bge-m3"

	// DefaultQueryListenAddr is the query-supply service listen address.
	DefaultQueryListenAddr = ":8001"

	// DefaultAnalysisListenAddr is the analysis service listen address.
	DefaultAnalysisListenAddr = ":8000"

	// DefaultScraperListenAddr is the scraper control listen address.
	DefaultScraperListenAddr = ":8002"

	// DefaultGenerationTimeout bounds one text-generation call.
	// Generation is slow but retried with backoff, so this is generous.
	DefaultGenerationTimeout = 90 * time.Second

	// DefaultTorStartupTimeout is the bootstrap budget for the embedded
	// Tor daemon.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is used for XDG directory paths.
	AppName = "leakscan"
)

// Config holds all options for the leakscan services.
// It is populated from CLI flags and passed by reference through the
// application; there is no global configuration state.
type Config struct {
	// TorProxyAddress is the Tor SOCKS5 proxy in "host:port" form.
	// All crawling traffic goes through it.
	TorProxyAddress string

	// UseExternalTor disables the embedded Tor daemon and uses the
	// proxy at TorProxyAddress instead.
	UseExternalTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// ProbeTimeout bounds the liveness pre-check per URL.
	ProbeTimeout time.Duration

	// FetchTimeout bounds a full page fetch.
	FetchTimeout time.Duration

	// SearchTimeout bounds one search-engine request.
	SearchTimeout time.Duration

	// MaxWorkers limits concurrent discovery and fetch tasks.
	MaxWorkers int

	// NumEngines is the number of search backends queried per cycle.
	NumEngines int

	// FetchLimit caps fetches per query.
	FetchLimit int

	// BatchSize is pages per analysis batch.
	BatchSize int

	// PollInterval is the delay between scrape cycles.
	PollInterval time.Duration

	// QueriesPerBatch is queries handed out per supply request.
	QueriesPerBatch int

	// InitialQueryCount is the size of the first generation round.
	InitialQueryCount int

	// MaxGenerationRounds caps generation rounds per target.
	MaxGenerationRounds int

	// DuplicateThreshold is the quality-gate duplicate-ratio cutoff.
	DuplicateThreshold float64

	// SimilarityThreshold is the similarity relevance cutoff.
	SimilarityThreshold float64

	// ConfidenceThreshold is the classification relevance cutoff.
	ConfidenceThreshold float64

	// ChunkSize and ChunkOverlap shape the similarity windows.
	ChunkSize    int
	ChunkOverlap int

	// ClassifyChunkTokens is the classification chunk size in tokens.
	ClassifyChunkTokens int

	// MaxClassifyChunks caps classified chunks per page.
	MaxClassifyChunks int

	// ClassificationLabels is the comma-separated zero-shot label set.
	ClassificationLabels string

	// GenerationAPIKey authenticates text-generation calls.
	GenerationAPIKey string

	// GenerationURL is the chat-completions endpoint for query generation.
	GenerationURL string

	// GenerationModel is the model identifier sent with generation calls.
	GenerationModel string

	// ClassifierURL is the zero-shot classification endpoint.
	ClassifierURL string

	// EmbeddingURL is the sentence-similarity endpoint.
	EmbeddingURL string

	// InferenceAPIKey authenticates classifier/embedding calls.
	InferenceAPIKey string

	// QueryListenAddr, AnalysisListenAddr, and ScraperListenAddr are
	// the HTTP listen addresses for the exposed service boundaries.
	QueryListenAddr    string
	AnalysisListenAddr string
	ScraperListenAddr  string

	// QueryServiceURL and AnalysisServiceURL are where the scraper and
	// analysis components reach the other services. They default to
	// loopback addresses derived from the listen ports.
	QueryServiceURL    string
	AnalysisServiceURL string

	// RemoteQueryService and RemoteAnalysisService switch the poll loop
	// and dispatcher from in-process adapters to HTTP clients against
	// the URLs above, for deployments that split the services across
	// hosts.
	RemoteQueryService    bool
	RemoteAnalysisService bool

	// DBDir is the directory for the SQLite store. Empty disables
	// persistence; the dedup set and verdicts then live in memory only.
	DBDir string

	// ProfileFile optionally points at a YAML target profile loaded at
	// startup, replacing the initial configure call.
	ProfileFile string

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
// Many defaults are non-zero, so relying on zero values would produce a
// broken configuration.
func NewConfig() *Config {
	return &Config{
		TorProxyAddress:      DefaultTorProxyAddress,
		TorStartupTimeout:    DefaultTorStartupTimeout,
		ProbeTimeout:         DefaultProbeTimeout,
		FetchTimeout:         DefaultFetchTimeout,
		SearchTimeout:        DefaultSearchTimeout,
		MaxWorkers:           DefaultMaxWorkers,
		NumEngines:           DefaultNumEngines,
		FetchLimit:           DefaultFetchLimit,
		BatchSize:            DefaultBatchSize,
		PollInterval:         DefaultPollInterval,
		QueriesPerBatch:      DefaultQueriesPerBatch,
		InitialQueryCount:    DefaultInitialQueryCount,
		MaxGenerationRounds:  DefaultMaxGenerationRounds,
		DuplicateThreshold:   DefaultDuplicateThreshold,
		SimilarityThreshold:  DefaultSimilarityThreshold,
		ConfidenceThreshold:  DefaultConfidenceThreshold,
		ChunkSize:            DefaultChunkSize,
		ChunkOverlap:         DefaultChunkOverlap,
		ClassifyChunkTokens:  DefaultClassifyChunkTokens,
		MaxClassifyChunks:    DefaultMaxClassifyChunks,
		ClassificationLabels: DefaultClassificationLabels,
		GenerationURL:        DefaultGenerationURL,
		GenerationModel:      DefaultGenerationModel,
		ClassifierURL:        DefaultClassifierURL,
		EmbeddingURL:         DefaultEmbeddingURL,
		QueryListenAddr:      DefaultQueryListenAddr,
		AnalysisListenAddr:   DefaultAnalysisListenAddr,
		ScraperListenAddr:    DefaultScraperListenAddr,
		QueryServiceURL:      "http://127.0.0.1:8001",
		AnalysisServiceURL:   "http://127.0.0.1:8000",
	}
}

// Labels returns the classification label set as a slice.
func (c *Config) Labels() []string {
	parts := strings.Split(c.ClassificationLabels, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

// XDGDataDir returns the XDG data directory for leakscan
// (~/.local/share/leakscan on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after CLI parsing, before any service starts.
func (c *Config) Validate() error {
	if c.MaxWorkers <= 0 {
		return ErrInvalidMaxWorkers
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.ProbeTimeout <= 0 || c.FetchTimeout <= 0 || c.SearchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProbeTimeout >= c.FetchTimeout {
		// The pre-check only saves cost if it is cheaper than the fetch.
		return ErrProbeSlowerThanFetch
	}
	if c.DuplicateThreshold < 0 || c.DuplicateThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.MaxGenerationRounds <= 0 {
		return ErrInvalidGenerationRounds
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidChunking
	}
	if c.ClassifyChunkTokens <= 0 || c.MaxClassifyChunks <= 0 {
		return ErrInvalidChunking
	}
	if !hasIrrelevantLabel(c.Labels()) {
		return ErrMissingIrrelevantLabel
	}
	return nil
}

func hasIrrelevantLabel(labels []string) bool {
	for _, l := range labels {
		if l == "irrelevant" {
			return true
		}
	}
	return false
}
