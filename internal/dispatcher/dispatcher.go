package dispatcher

import (
	"context"
	"log/slog"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// defaultBatchSize is the number of pages per analysis submission.
const defaultBatchSize = 5

// Analyzer submits one batch of pages for relevance analysis.
// remote.AnalysisClient is the production implementation.
type Analyzer interface {
	Analyze(ctx context.Context, pages []model.PageInput) (model.AnalysisReport, error)
}

// BatchOutcome records how one batch submission ended.
type BatchOutcome struct {
	// Batch is the 1-based batch number within the dispatch.
	Batch int

	// Pages is the number of pages in the batch.
	Pages int

	// Report is the analysis result for a successful submission.
	Report model.AnalysisReport

	// Err is set when the submission failed. The batch's pages were not
	// analyzed and will not be retried this cycle.
	Err error
}

// Dispatcher batches fetched pages and submits them for analysis.
type Dispatcher struct {
	analyzer  Analyzer
	batchSize int
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBatchSize sets the number of pages per submission.
func WithBatchSize(size int) Option {
	return func(d *Dispatcher) {
		d.batchSize = size
	}
}

// WithLogger sets the logger used for dispatch activity.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher submitting through the given analyzer.
func New(analyzer Analyzer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		analyzer:  analyzer,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch filters the fetch results down to pages with usable content,
// groups them into batches, and submits each batch independently.
// Returns one outcome per submitted batch, in order. Failed pages (dead
// links, timeouts) are dropped here; they carry nothing to analyze.
func (d *Dispatcher) Dispatch(ctx context.Context, results []model.FetchResult) []BatchOutcome {
	pages := make([]model.PageInput, 0, len(results))
	for _, r := range results {
		if r.Outcome.OK() {
			pages = append(pages, model.PageInput{Text: r.Content, SourceURL: r.URL})
		}
	}
	if len(pages) == 0 {
		d.logger.InfoContext(ctx, "no fetched pages to dispatch")
		return nil
	}

	numBatches := (len(pages) + d.batchSize - 1) / d.batchSize
	d.logger.InfoContext(ctx, "dispatching pages",
		slog.Int("pages", len(pages)),
		slog.Int("batches", numBatches),
		slog.Int("batch_size", d.batchSize))

	outcomes := make([]BatchOutcome, 0, numBatches)
	for i := 0; i < len(pages); i += d.batchSize {
		end := min(i+d.batchSize, len(pages))
		batch := pages[i:end]
		num := len(outcomes) + 1

		outcome := BatchOutcome{Batch: num, Pages: len(batch)}
		report, err := d.analyzer.Analyze(ctx, batch)
		if err != nil {
			// The batch is lost for this cycle; siblings proceed.
			d.logger.ErrorContext(ctx, "batch submission failed",
				slog.Int("batch", num),
				slog.Int("of", numBatches),
				slog.String("error", err.Error()))
			outcome.Err = err
		} else {
			d.logger.InfoContext(ctx, "batch analyzed",
				slog.Int("batch", num),
				slog.Int("of", numBatches),
				slog.Int("relevant", report.RelevantCount),
				slog.Int("total", report.Total))
			outcome.Report = report
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
