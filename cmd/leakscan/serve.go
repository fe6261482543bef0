package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pramath6095/dark-web-leak-ai/internal/config"
	"github.com/pramath6095/dark-web-leak-ai/internal/crawler"
	"github.com/pramath6095/dark-web-leak-ai/internal/database"
	"github.com/pramath6095/dark-web-leak-ai/internal/dispatcher"
	"github.com/pramath6095/dark-web-leak-ai/internal/llm"
	"github.com/pramath6095/dark-web-leak-ai/internal/log"
	"github.com/pramath6095/dark-web-leak-ai/internal/model"
	"github.com/pramath6095/dark-web-leak-ai/internal/pipeline"
	"github.com/pramath6095/dark-web-leak-ai/internal/poll"
	"github.com/pramath6095/dark-web-leak-ai/internal/queries"
	"github.com/pramath6095/dark-web-leak-ai/internal/remote"
	"github.com/pramath6095/dark-web-leak-ai/internal/server"
	"github.com/pramath6095/dark-web-leak-ai/internal/tor"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the leak monitor services",
		Long: `Serve starts every leakscan component in one process:

- the query supply (LLM-backed query and search-string generation)
- the Tor crawler and its poll loop
- the relevance-analysis pipeline
- HTTP endpoints for configuration, triggering, and health

A target can be configured at startup with --profile, or later via
POST /configure on the query service address.

Examples:
  # Monitor a target described in a YAML profile, embedded Tor
  leakscan serve --profile acme.yaml --generation-api-key $LLM_API_KEY

  # Use an already-running Tor daemon
  leakscan serve --profile acme.yaml --external-tor 127.0.0.1:9050

  # Poll more aggressively and keep state in a custom directory
  leakscan serve --profile acme.yaml --poll-interval 2m --db-dir /var/lib/leakscan`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	// Tor connection flags
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Crawl behavior flags
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"Delay between scrape cycles")
	cmd.Flags().Int("max-workers", config.DefaultMaxWorkers,
		"Concurrent discovery/fetch tasks (one Tor circuit each)")
	cmd.Flags().Int("num-engines", config.DefaultNumEngines,
		"Number of onion search engines queried per cycle")
	cmd.Flags().Int("fetch-limit", config.DefaultFetchLimit,
		"Maximum pages fetched per query")
	cmd.Flags().Int("batch-size", config.DefaultBatchSize,
		"Pages per analysis batch")
	cmd.Flags().Int("queries-per-batch", config.DefaultQueriesPerBatch,
		"Queries handed to the scraper per poll")

	// Model endpoints
	cmd.Flags().String("generation-url", config.DefaultGenerationURL,
		"Chat-completions endpoint for query generation")
	cmd.Flags().String("generation-model", config.DefaultGenerationModel,
		"Model identifier for query generation")
	cmd.Flags().String("generation-api-key", os.Getenv("LLM_API_KEY"),
		"API key for the generation endpoint (defaults to $LLM_API_KEY)")
	cmd.Flags().String("classifier-url", config.DefaultClassifierURL,
		"Zero-shot classification endpoint")
	cmd.Flags().String("embedding-url", config.DefaultEmbeddingURL,
		"Sentence-similarity endpoint")
	cmd.Flags().String("inference-api-key", os.Getenv("HF_API_KEY"),
		"API key for the inference endpoints (defaults to $HF_API_KEY)")

	// Service addresses
	cmd.Flags().String("query-listen", config.DefaultQueryListenAddr,
		"Listen address for the query service")
	cmd.Flags().String("analysis-listen", config.DefaultAnalysisListenAddr,
		"Listen address for the analysis service")
	cmd.Flags().String("scraper-listen", config.DefaultScraperListenAddr,
		"Listen address for the scraper control service")
	cmd.Flags().String("query-service-url", "",
		"Consume queries from a query service at this URL instead of in-process")
	cmd.Flags().String("analysis-service-url", "",
		"Send batches to an analysis service at this URL instead of in-process")

	// Persistence and target
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the SQLite store (empty disables persistence)")
	cmd.Flags().StringP("profile", "p", "",
		"YAML target profile to configure at startup")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig creates a Config from cobra command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	externalTor, err := cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, fmt.Errorf("failed to get external-tor flag: %w", err)
	}
	if externalTor != "" {
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = externalTor
	}

	if cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout"); err != nil {
		return nil, fmt.Errorf("failed to get tor-timeout flag: %w", err)
	}
	if cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval"); err != nil {
		return nil, fmt.Errorf("failed to get poll-interval flag: %w", err)
	}
	if cfg.MaxWorkers, err = cmd.Flags().GetInt("max-workers"); err != nil {
		return nil, fmt.Errorf("failed to get max-workers flag: %w", err)
	}
	if cfg.NumEngines, err = cmd.Flags().GetInt("num-engines"); err != nil {
		return nil, fmt.Errorf("failed to get num-engines flag: %w", err)
	}
	if cfg.FetchLimit, err = cmd.Flags().GetInt("fetch-limit"); err != nil {
		return nil, fmt.Errorf("failed to get fetch-limit flag: %w", err)
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
		return nil, fmt.Errorf("failed to get batch-size flag: %w", err)
	}
	if cfg.QueriesPerBatch, err = cmd.Flags().GetInt("queries-per-batch"); err != nil {
		return nil, fmt.Errorf("failed to get queries-per-batch flag: %w", err)
	}
	if cfg.GenerationURL, err = cmd.Flags().GetString("generation-url"); err != nil {
		return nil, fmt.Errorf("failed to get generation-url flag: %w", err)
	}
	if cfg.GenerationModel, err = cmd.Flags().GetString("generation-model"); err != nil {
		return nil, fmt.Errorf("failed to get generation-model flag: %w", err)
	}
	if cfg.GenerationAPIKey, err = cmd.Flags().GetString("generation-api-key"); err != nil {
		return nil, fmt.Errorf("failed to get generation-api-key flag: %w", err)
	}
	if cfg.ClassifierURL, err = cmd.Flags().GetString("classifier-url"); err != nil {
		return nil, fmt.Errorf("failed to get classifier-url flag: %w", err)
	}
	if cfg.EmbeddingURL, err = cmd.Flags().GetString("embedding-url"); err != nil {
		return nil, fmt.Errorf("failed to get embedding-url flag: %w", err)
	}
	if cfg.InferenceAPIKey, err = cmd.Flags().GetString("inference-api-key"); err != nil {
		return nil, fmt.Errorf("failed to get inference-api-key flag: %w", err)
	}
	if cfg.QueryListenAddr, err = cmd.Flags().GetString("query-listen"); err != nil {
		return nil, fmt.Errorf("failed to get query-listen flag: %w", err)
	}
	if cfg.AnalysisListenAddr, err = cmd.Flags().GetString("analysis-listen"); err != nil {
		return nil, fmt.Errorf("failed to get analysis-listen flag: %w", err)
	}
	if cfg.ScraperListenAddr, err = cmd.Flags().GetString("scraper-listen"); err != nil {
		return nil, fmt.Errorf("failed to get scraper-listen flag: %w", err)
	}

	queryServiceURL, err := cmd.Flags().GetString("query-service-url")
	if err != nil {
		return nil, fmt.Errorf("failed to get query-service-url flag: %w", err)
	}
	if queryServiceURL != "" {
		cfg.RemoteQueryService = true
		cfg.QueryServiceURL = queryServiceURL
	}
	analysisServiceURL, err := cmd.Flags().GetString("analysis-service-url")
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis-service-url flag: %w", err)
	}
	if analysisServiceURL != "" {
		cfg.RemoteAnalysisService = true
		cfg.AnalysisServiceURL = analysisServiceURL
	}

	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, fmt.Errorf("failed to get db-dir flag: %w", err)
	}
	if cfg.ProfileFile, err = cmd.Flags().GetString("profile"); err != nil {
		return nil, fmt.Errorf("failed to get profile flag: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runServe wires every component and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Tor access: embedded daemon by default, external proxy on request.
	torClient, stopTor, err := setupTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	// Persistence is optional; without it the dedup set and verdicts
	// live in memory only.
	var store *database.Store
	var warmSeen []string
	if cfg.DBDir != "" {
		store, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close() //nolint:errcheck
		if warmSeen, err = store.LoadSeen(ctx); err != nil {
			return fmt.Errorf("failed to load seen urls: %w", err)
		}
		logger.Info("store opened",
			slog.String("dir", cfg.DBDir),
			slog.Int("seen_urls", len(warmSeen)))
	}

	// Query supply.
	chatClient, err := llm.NewChatClient(cfg.GenerationURL, cfg.GenerationModel,
		llm.WithAPIKey(cfg.GenerationAPIKey),
		llm.WithTimeout(config.DefaultGenerationTimeout),
		llm.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build generation client: %w", err)
	}
	producer := queries.NewProducer(chatClient,
		queries.WithInitialCount(cfg.InitialQueryCount),
		queries.WithProducerLogger(logger))
	supply := queries.NewSupply(producer,
		queries.WithMaxRounds(cfg.MaxGenerationRounds),
		queries.WithDuplicateThreshold(cfg.DuplicateThreshold),
		queries.WithSupplyLogger(logger))

	if cfg.ProfileFile != "" {
		profile, err := config.LoadProfile(cfg.ProfileFile)
		if err != nil {
			return fmt.Errorf("failed to load target profile: %w", err)
		}
		nQueries, nStrings, err := supply.Configure(ctx, profile)
		if err != nil {
			return fmt.Errorf("failed to configure target: %w", err)
		}
		logger.Info("target configured from profile",
			slog.String("target", profile.Name),
			slog.Int("queries", nQueries),
			slog.Int("search_strings", nStrings))
	}

	// Relevance pipeline.
	inference := pipeline.NewInferenceClient(cfg.ClassifierURL, cfg.EmbeddingURL,
		pipeline.WithInferenceAPIKey(cfg.InferenceAPIKey),
		pipeline.WithCandidateLabels(cfg.Labels()))
	analyzer := pipeline.NewAnalyzer(inference, inference,
		pipeline.WithThresholds(cfg.ConfidenceThreshold, cfg.SimilarityThreshold),
		pipeline.WithClassifyChunking(cfg.ClassifyChunkTokens, cfg.MaxClassifyChunks),
		pipeline.WithSimilarityChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		pipeline.WithAnalyzerLogger(logger))

	// Crawler and poll loop.
	crawl := crawler.New(torClient,
		crawler.WithMaxWorkers(cfg.MaxWorkers),
		crawler.WithNumEngines(cfg.NumEngines),
		crawler.WithFetchLimit(cfg.FetchLimit),
		crawler.WithSearchTimeout(cfg.SearchTimeout),
		crawler.WithLogger(logger))

	var sink server.VerdictSink
	if store != nil {
		sink = store
	}

	// Batches go to the in-process pipeline unless an off-box analysis
	// service was configured.
	var batchAnalyzer dispatcher.Analyzer = &localAnalyzer{
		analyzer: analyzer, supply: supply, sink: sink, logger: logger,
	}
	if cfg.RemoteAnalysisService {
		batchAnalyzer = remote.NewAnalysisClient(cfg.AnalysisServiceURL)
		logger.Info("dispatching batches to remote analysis service",
			slog.String("url", cfg.AnalysisServiceURL))
	}
	disp := dispatcher.New(batchAnalyzer,
		dispatcher.WithBatchSize(cfg.BatchSize),
		dispatcher.WithLogger(logger))

	// Queries and search strings come from the in-process supply unless
	// an off-box query service was configured.
	var querySource poll.QuerySource = &supplySource{supply: supply, batchSize: cfg.QueriesPerBatch}
	var searchSource server.SearchStringSource = &supplyStrings{supply: supply}
	if cfg.RemoteQueryService {
		queryClient := remote.NewQueryClient(cfg.QueryServiceURL)
		querySource = queryClient
		searchSource = queryClient
		logger.Info("consuming queries from remote query service",
			slog.String("url", cfg.QueryServiceURL))
	}

	seen := crawler.NewSeenSet(warmSeen)
	loopOpts := []poll.Option{
		poll.WithInterval(cfg.PollInterval),
		poll.WithLogger(logger),
	}
	if store != nil {
		loopOpts = append(loopOpts, poll.WithSeenPersistence(func(ctx context.Context, urls []string) {
			if err := store.MarkSeen(ctx, urls); err != nil {
				logger.Warn("failed to persist seen urls", slog.String("error", err.Error()))
			}
		}))
	}
	loop := poll.New(querySource, crawl, disp, seen, loopOpts...)

	// HTTP surfaces.
	queryServer := server.NewQueryServer(supply,
		server.WithQueryBatchSize(cfg.QueriesPerBatch),
		server.WithQueryServerLogger(logger))
	analysisOpts := []server.AnalysisServerOption{server.WithAnalysisServerLogger(logger)}
	if sink != nil {
		analysisOpts = append(analysisOpts, server.WithVerdictSink(sink))
	}
	analysisServer := server.NewAnalysisServer(analyzer, searchSource, analysisOpts...)
	scraperServer := server.NewScraperServer(loop, server.ScraperInfo{
		QueryServiceURL:    cfg.QueryServiceURL,
		AnalysisServiceURL: cfg.AnalysisServiceURL,
		TorProxy:           torClient.ProxyAddress(),
		PollInterval:       cfg.PollInterval,
	}, server.WithScraperServerLogger(logger))

	g, ctx := errgroup.WithContext(ctx)
	serveHTTP(ctx, g, cfg.QueryListenAddr, queryServer.Handler(), "query", logger)
	serveHTTP(ctx, g, cfg.AnalysisListenAddr, analysisServer.Handler(), "analysis", logger)
	serveHTTP(ctx, g, cfg.ScraperListenAddr, scraperServer.Handler(), "scraper", logger)

	g.Go(func() error {
		err := loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err == nil {
			// The supply ran dry; keep serving HTTP so operators can
			// inspect results or reconfigure a new target.
			logger.Info("poll loop finished, query supply exhausted")
		}
		return err
	})

	logger.Info("leakscan running",
		slog.String("query_listen", cfg.QueryListenAddr),
		slog.String("analysis_listen", cfg.AnalysisListenAddr),
		slog.String("scraper_listen", cfg.ScraperListenAddr),
		slog.String("tor_proxy", torClient.ProxyAddress()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// setupTor returns a Tor client backed by either an external proxy or
// a freshly bootstrapped embedded daemon, plus a stop function.
func setupTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	clientOpts := []tor.Option{
		tor.WithFetchTimeout(cfg.FetchTimeout),
		tor.WithProbeTimeout(cfg.ProbeTimeout),
	}

	if cfg.UseExternalTor {
		client, err := tor.NewClient(cfg.TorProxyAddress, clientOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			logger.Warn("tor proxy check failed",
				slog.String("proxy", cfg.TorProxyAddress),
				slog.String("status", status.String()))
		}
		return client, func() {}, nil
	}

	embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	logger.Info("starting embedded tor daemon")
	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded tor: %w", err)
	}
	client, err := embedded.NewClient(clientOpts...)
	if err != nil {
		_ = embedded.Stop()
		return nil, nil, fmt.Errorf("failed to create tor client: %w", err)
	}
	logger.Info("embedded tor ready", slog.String("socks", embedded.SocksAddr()))
	return client, func() { _ = embedded.Stop() }, nil
}

// serveHTTP starts one HTTP server under the errgroup with graceful
// shutdown on context cancellation.
func serveHTTP(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, name string, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("http server listening",
			slog.String("service", name),
			slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// supplySource adapts the in-process query supply to the poll loop.
type supplySource struct {
	supply    *queries.Supply
	batchSize int
}

func (s *supplySource) NextQueries(ctx context.Context) (queries.Batch, error) {
	return s.supply.NextBatch(ctx, s.batchSize)
}

// supplyStrings adapts the in-process supply to the analysis server's
// search-string source.
type supplyStrings struct {
	supply *queries.Supply
}

func (s *supplyStrings) SearchStrings(_ context.Context) ([]string, error) {
	return s.supply.SearchStrings()
}

// localAnalyzer adapts the in-process pipeline to the dispatcher,
// resolving search strings from the supply and persisting verdicts.
type localAnalyzer struct {
	analyzer *pipeline.Analyzer
	supply   *queries.Supply
	sink     server.VerdictSink
	logger   *slog.Logger
}

func (a *localAnalyzer) Analyze(ctx context.Context, pages []model.PageInput) (model.AnalysisReport, error) {
	searchStrings, err := a.supply.SearchStrings()
	if err != nil {
		return model.AnalysisReport{}, fmt.Errorf("failed to resolve search strings: %w", err)
	}

	report := a.analyzer.AnalyzeBatch(ctx, pages, searchStrings)

	if a.sink != nil {
		if err := a.sink.SaveReport(ctx, report); err != nil {
			a.logger.Warn("failed to persist verdicts", slog.String("error", err.Error()))
		}
	}
	return report, nil
}
