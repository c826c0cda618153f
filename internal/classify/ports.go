package classify

import (
	"context"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// Response is a transport-level HTTP response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Body is the full response body.
	Body []byte
}

// Transport is the outbound HTTP port. The core never constructs HTTP
// clients directly so callers can route traffic however they need
// (proxies, instrumentation, test stubs).
type Transport interface {
	// Post sends a POST request with a JSON body and returns the
	// response. A non-nil error means the request never completed
	// (network failure, timeout); HTTP-level failures come back as
	// status codes.
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
}

// Cache is the per-term classification cache port. Implementations are
// expected to enforce the TTL on read.
type Cache interface {
	// GetCachedClassification returns the cached results for a term.
	// The boolean is false on a miss (including expiry).
	GetCachedClassification(ctx context.Context, term string) ([]model.TouchstoneResult, bool, error)

	// SetCachedClassification stores results for a term with a TTL.
	// Negative results (empty slices) are cached too: re-asking the
	// remote service about a term it does not know is wasted exposure.
	SetCachedClassification(ctx context.Context, term string, results []model.TouchstoneResult, ttl time.Duration) error
}
