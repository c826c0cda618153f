package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/decoy"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Endpoint path conventions of the classification service. The structured
// Connect RPC path is tried first; the plain REST path is the one-shot
// fallback when the service answers 404 (older deployments).
const (
	ConnectPath = "/anonymizer.v1.ClassificationService/ClassifyBatch"
	RESTPath    = "/v1/classify/batch"
)

// Default client settings.
const (
	// DefaultMaxBatchSize bounds one outbound batch, decoys included.
	DefaultMaxBatchSize = 100

	// DefaultDecoyRatio adds roughly one decoy for every three real terms.
	DefaultDecoyRatio = 0.35

	// DefaultCacheTTL keeps classification results for a week. Dictionary
	// content changes rarely; the TTL mostly bounds stale negative results.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultTimeout bounds one batch round trip.
	DefaultTimeout = 10 * time.Second
)

// Config holds classification client settings.
type Config struct {
	// BaseURL is the classification service base URL, without path.
	BaseURL string

	// Timeout bounds each batch round trip.
	Timeout time.Duration

	// MaxBatchSize bounds one outbound batch, decoys included.
	MaxBatchSize int

	// DecoyRatio is the synthetic-to-real term ratio in [0,1].
	DecoyRatio float64

	// Jurisdictions restricts which dictionaries the service consults.
	Jurisdictions []string

	// CacheTTL is how long per-term results stay cached.
	CacheTTL time.Duration
}

// withDefaults fills zero-valued settings.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.DecoyRatio <= 0 {
		c.DecoyRatio = DefaultDecoyRatio
	}
	if len(c.Jurisdictions) == 0 {
		c.Jurisdictions = []string{"FR"}
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

// Client batches candidate terms to the remote classification service.
type Client struct {
	transport Transport
	cache     Cache
	config    Config
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a classification client.
func NewClient(transport Transport, cache Cache, cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		cache:     cache,
		config:    cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// ClassifyBatch classifies the word terms of the given groups. It returns
// the per-term results and whether any batch was abandoned (degraded
// means the assembler should expect missing remote signals, not that the
// call failed). The only returned errors are cache failures.
func (c *Client) ClassifyBatch(ctx context.Context, groups []model.DetectedGroup) (map[string][]model.TouchstoneResult, bool, error) {
	results := make(map[string][]model.TouchstoneResult)

	pending, err := c.collectTerms(ctx, groups, results)
	if err != nil {
		return nil, false, err
	}
	if len(pending) == 0 {
		return results, false, nil
	}

	degraded := false
	answered := make(map[string]struct{}, len(pending))
	for _, batch := range c.splitBatches(pending) {
		if c.classifyOne(ctx, batch, results) {
			for _, term := range batch {
				answered[term] = struct{}{}
			}
		} else {
			degraded = true
		}
	}

	// Cache every answered term, negatives included. Terms from abandoned
	// batches stay uncached: "the service was unreachable" must not be
	// remembered as "the service does not know this term".
	for _, term := range pending {
		if _, ok := answered[term]; !ok {
			continue
		}
		if err := c.cache.SetCachedClassification(ctx, term, results[term], c.config.CacheTTL); err != nil {
			return nil, degraded, err
		}
	}

	return results, degraded, nil
}

// collectTerms gathers the deduplicated word terms of all remote-eligible
// groups, resolving cache hits directly into the result map.
func (c *Client) collectTerms(ctx context.Context, groups []model.DetectedGroup, results map[string][]model.TouchstoneResult) ([]string, error) {
	seen := make(map[string]struct{})
	pending := make([]string, 0, len(groups))

	for _, group := range groups {
		if group.SkipRemote {
			continue
		}
		for _, term := range group.WordTerms() {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}

			cached, hit, err := c.cache.GetCachedClassification(ctx, term)
			if err != nil {
				return nil, err
			}
			if hit {
				if len(cached) > 0 {
					results[term] = cached
				}
				continue
			}
			pending = append(pending, term)
		}
	}

	return pending, nil
}

// splitBatches chunks terms so that each chunk still fits MaxBatchSize
// after decoys are added: chunk + ceil(chunk*ratio) <= max.
func (c *Client) splitBatches(terms []string) [][]string {
	chunk := int(math.Floor(float64(c.config.MaxBatchSize) / (1 + c.config.DecoyRatio)))
	if chunk < 1 {
		chunk = 1
	}

	batches := make([][]string, 0, (len(terms)+chunk-1)/chunk)
	for start := 0; start < len(terms); start += chunk {
		end := start + chunk
		if end > len(terms) {
			end = len(terms)
		}
		batches = append(batches, terms[start:end])
	}
	return batches
}

// requestBody is the wire format both endpoints accept.
type requestBody struct {
	Terms         []string `json:"terms"`
	Jurisdictions []string `json:"jurisdictions"`
}

// classifyOne mixes decoys into one batch, posts it, and merges surviving
// real-term results. It returns false when the batch was abandoned.
func (c *Client) classifyOne(ctx context.Context, batch []string, results map[string][]model.TouchstoneResult) bool {
	mixed, realSet := decoy.Mix(batch, c.config.DecoyRatio, c.config.MaxBatchSize)

	payload, err := json.Marshal(requestBody{
		Terms:         mixed,
		Jurisdictions: c.config.Jurisdictions,
	})
	if err != nil {
		c.logger.Warn("classification request marshalling failed", "error", err)
		return false
	}

	body, ok := c.postWithFallback(ctx, payload)
	if !ok {
		return false
	}

	classified, err := parseResponse(body)
	if err != nil {
		c.logger.Warn("classification response unreadable", "error", err)
		return false
	}

	// Strip decoys. This membership check is the only place synthetic
	// terms are removed: their responses are structurally identical to
	// real ones by design.
	for term, res := range classified {
		if _, real := realSet[term]; !real {
			continue
		}
		results[term] = res
	}

	// Real terms the service did not mention are authoritative negatives.
	for term := range realSet {
		if _, ok := results[term]; !ok {
			results[term] = nil
		}
	}

	return true
}

// postWithFallback tries the transport strategies in order: the Connect
// RPC endpoint first, then the REST endpoint, but only when the former
// answers 404 (protocol mismatch). Any other failure abandons the batch.
func (c *Client) postWithFallback(ctx context.Context, payload []byte) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	headers := map[string]string{"Content-Type": "application/json"}
	endpoints := []string{
		c.config.BaseURL + ConnectPath,
		c.config.BaseURL + RESTPath,
	}

	for i, endpoint := range endpoints {
		resp, err := c.transport.Post(ctx, endpoint, payload, headers)
		if err != nil {
			c.logger.Warn("classification batch abandoned",
				"endpoint", endpoint,
				"error", err,
			)
			return nil, false
		}

		switch {
		case resp.Status >= 200 && resp.Status < 300:
			return resp.Body, true
		case resp.Status == 404 && i == 0:
			c.logger.Debug("connect endpoint not found, falling back to REST",
				"endpoint", endpoint,
			)
			continue
		default:
			c.logger.Warn("classification batch abandoned",
				"endpoint", endpoint,
				"status", resp.Status,
			)
			return nil, false
		}
	}

	return nil, false
}

// parseResponse decodes the service response. The canonical shape is
// {"classifications": {term: [result, ...]}}; older deployments wrap each
// term's results as {"results": [...]}. Both are accepted.
func parseResponse(body []byte) (map[string][]model.TouchstoneResult, error) {
	var envelope struct {
		Classifications map[string]json.RawMessage `json:"classifications"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	out := make(map[string][]model.TouchstoneResult, len(envelope.Classifications))
	for term, raw := range envelope.Classifications {
		var list []model.TouchstoneResult
		if err := json.Unmarshal(raw, &list); err == nil {
			out[term] = list
			continue
		}

		var wrapped struct {
			Results []model.TouchstoneResult `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		out[term] = wrapped.Results
	}

	return out, nil
}
