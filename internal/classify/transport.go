package classify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBody bounds how much of a classification response is read.
// 2MB is far beyond any legitimate batch response and keeps a misbehaving
// server from exhausting memory.
const maxResponseBody = 2 * 1024 * 1024

// HTTPTransport is the production Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport with the given timeout as a
// hard cap per request; per-call contexts may shorten it further.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: data}, nil
}
