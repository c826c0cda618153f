package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
	"github.com/hazyhaar/whiteout-ext/internal/classify"
	"github.com/hazyhaar/whiteout-ext/internal/detect"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Store is the persistence port the pipeline consumes. Alias maps are
// session-scoped; the classification cache is global. Persistence
// technology is the caller's concern.
type Store interface {
	// GetAliasMap loads the alias map for a session. A session never
	// seen before yields an empty, non-nil map.
	GetAliasMap(ctx context.Context, sessionID string) (map[string]string, error)

	// SetAliasMap persists the session alias map. Last write wins;
	// callers needing strict cross-call consistency serialize their
	// pipeline calls per session.
	SetAliasMap(ctx context.Context, sessionID string, aliases map[string]string) error

	classify.Cache
}

// Deps bundles the external collaborators of one pipeline run.
type Deps struct {
	// Transport carries classification batches to the remote service.
	Transport classify.Transport

	// Store persists alias maps and cached classifications.
	Store Store

	// Logger receives structured stage logging. Defaults to slog.Default.
	Logger *slog.Logger
}

// Options configures one pipeline run.
type Options struct {
	// BaseURL is the classification service base URL.
	BaseURL string

	// Timeout bounds each classification batch round trip.
	Timeout time.Duration

	// MaxBatchSize bounds one outbound batch, decoys included.
	MaxBatchSize int

	// DecoyRatio is the synthetic-to-real term ratio in [0,1].
	DecoyRatio float64

	// Jurisdictions restricts dictionary lookups, local and remote.
	Jurisdictions []string

	// AliasStyle selects generic or realistic aliases.
	AliasStyle alias.Style
}

// Run anonymizes one text: tokenize, detect, classify, assemble,
// substitute. The session alias map is loaded once before assembly and
// persisted once before returning, so identical text within a session
// keeps its alias across calls.
//
// Remote classification failures never fail the run; the result degrades
// to local-only confidence. Storage failures do fail it.
func Run(ctx context.Context, text string, deps Deps, sessionID string, opts Options) (*model.ProcessResult, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	aliasMap, err := deps.Store.GetAliasMap(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias map for session %q: %w", sessionID, err)
	}
	if aliasMap == nil {
		aliasMap = make(map[string]string)
	}

	client := classify.NewClient(deps.Transport, deps.Store, classify.Config{
		BaseURL:       opts.BaseURL,
		Timeout:       opts.Timeout,
		MaxBatchSize:  opts.MaxBatchSize,
		DecoyRatio:    opts.DecoyRatio,
		Jurisdictions: opts.Jurisdictions,
	}, classify.WithLogger(logger))

	p := New(WithLogger(logger))
	p.AddSteps(
		tokenizeStep{},
		detectStep{detector: detect.New(detect.WithJurisdictions(opts.Jurisdictions))},
		classifyStep{client: client},
		assembleStep{
			aliasMap: aliasMap,
			// Counters continue from the aliases already issued in this
			// session, so numbering stays unique across calls.
			generator: alias.NewGenerator(opts.AliasStyle, alias.SeedCounters(aliasMap)),
		},
		substituteStep{},
	)

	result := model.NewProcessResult(sessionID, text)
	if err := p.Execute(ctx, result); err != nil {
		return nil, err
	}

	if err := deps.Store.SetAliasMap(ctx, sessionID, aliasMap); err != nil {
		return nil, fmt.Errorf("failed to persist alias map for session %q: %w", sessionID, err)
	}

	if result.RemoteDegraded {
		logger.Warn("remote classification degraded, result is local-only for some terms",
			"session", sessionID,
			"entities", len(result.Entities),
		)
	}

	return result, nil
}
