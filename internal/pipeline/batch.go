package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// DefaultBatchConcurrency bounds concurrent document runs. The pipeline
// is CPU-light; the limit mostly protects the classification service and
// the local store from bursts.
const DefaultBatchConcurrency = 4

// BatchItem is one document to anonymize.
type BatchItem struct {
	// SessionID scopes alias consistency for this document. Items that
	// must share aliases need the same session ID and a concurrency of
	// one: the alias map has no cross-writer coordination.
	SessionID string

	// Text is the document content.
	Text string
}

// BatchProcessor anonymizes multiple documents concurrently.
type BatchProcessor struct {
	deps        Deps
	opts        Options
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the maximum number of concurrent document runs.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// NewBatchProcessor creates a BatchProcessor sharing one dependency set
// and option set across all documents.
func NewBatchProcessor(deps Deps, opts Options, batchOpts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		deps:        deps,
		opts:        opts,
		concurrency: DefaultBatchConcurrency,
	}
	for _, opt := range batchOpts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Process runs the pipeline for every item and returns the results in
// item order, so callers can pair results back with their inputs. The
// first storage error cancels remaining work; remote-classification
// degradation does not.
func (b *BatchProcessor) Process(ctx context.Context, items []BatchItem) ([]*model.ProcessResult, error) {
	results := make([]*model.ProcessResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, item := range items {
		g.Go(func() error {
			result, err := Run(gctx, item.Text, b.deps, item.SessionID, b.opts)
			if err != nil {
				b.logger.Error("document failed",
					"session", item.SessionID,
					"error", err,
				)
				return err
			}

			// Each goroutine owns its own slot.
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
