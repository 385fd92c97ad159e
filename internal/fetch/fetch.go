// Package fetch wraps the outbound HTTP client used to pull asset bytes from
// the storage URL during downloads. The asset host sets no server-side limits,
// so the client carries an explicit timeout to keep a slow remote from
// blocking a worker indefinitely.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a single asset fetch.
const DefaultTimeout = 30 * time.Second

// Client fetches remote asset content.
type Client struct {
	http *http.Client
}

// New builds a Client with the given timeout (DefaultTimeout when zero).
// Requests are traced via otelhttp.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch downloads the full body at url. Any non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch asset: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read asset body: %w", err)
	}
	return body, nil
}
