// Package rdap implements the direct RDAP-over-HTTP protocol client. One call
// is one bounded request; retry and fallback policy live in the orchestrator.
package rdap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "domainlens/pkg/domain-errors"
)

const (
	acceptHeader = "application/rdap+json, application/json"
	maxBodyBytes = 2 << 20
)

// Client executes single bounded-time RDAP queries.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the HTTP client; the per-call context budget still
// governs cancellation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds an RDAP client.
func New(opts ...Option) *Client {
	c := &Client{http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query performs GET {base}/domain/{domain} under the given budget and returns
// the raw payload, or a coded failure:
//
//   - CodeNotRegistered: HTTP 404, a positive terminal signal
//   - CodeTimeout: the budget elapsed before the response completed
//   - CodeTransportBlocked: connectivity-class failure (dial, reset, TLS)
//   - CodeServerError: reachable but non-2xx
func (c *Client) Query(ctx context.Context, base, domain string, budget time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	url := strings.TrimRight(base, "/") + "/domain/" + domain
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeServerError, "build rdap request")
	}
	req.Header.Set("Accept", acceptHeader)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Newf(dErrors.CodeTimeout, "rdap query for %s exceeded %s", domain, budget)
		}
		if errors.Is(err, context.Canceled) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "rdap query cancelled")
		}
		// Anything else that prevented a response is connectivity-class.
		return nil, dErrors.Wrap(err, dErrors.CodeTransportBlocked, "rdap transport failure")
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug("rdap query completed",
			"domain", domain,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, dErrors.Newf(dErrors.CodeNotRegistered, "%s is not registered", domain)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, dErrors.Newf(dErrors.CodeServerError, "rdap server returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "rdap response read timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeServerError, "read rdap response")
	}
	if len(body) == 0 {
		return nil, dErrors.New(dErrors.CodeServerError, "empty rdap response")
	}
	return body, nil
}
