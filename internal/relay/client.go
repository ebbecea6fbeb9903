// Package relay executes lookups through the trusted intermediary. The relay
// has no cross-origin restriction and wider protocol coverage, so the
// orchestrator treats a relay record as authoritative and uses it as the
// mandatory last fallback tier. It also serves pricing data independently.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"domainlens/internal/lookup/models"
	dErrors "domainlens/pkg/domain-errors"
	"domainlens/pkg/platform/circuit"
)

const maxBodyBytes = 2 << 20

// Options select the relay query mode.
type Options struct {
	// SkipPricing asks the relay not to compute pricing inline; used for
	// suffixes where the pricing policy defers it.
	SkipPricing bool `json:"skipPricing,omitempty"`
	// PricingOnly fetches pricing without performing the primary lookup.
	PricingOnly bool `json:"pricingOnly,omitempty"`
}

type request struct {
	Domain string `json:"domain"`
	Options
}

// Response is the relay's answer. Exactly one of Primary, IsAvailable, or
// Error is meaningful for the primary path; Pricing may accompany any of them.
type Response struct {
	Primary     *models.RawFields `json:"primary,omitempty"`
	Pricing     *models.Pricing   `json:"pricing,omitempty"`
	Error       string            `json:"error,omitempty"`
	IsAvailable *bool             `json:"isAvailable,omitempty"`
}

// Client calls the relay over HTTP with a signed service token per request.
type Client struct {
	url        string
	signingKey []byte
	timeout    time.Duration
	http       *http.Client
	logger     *slog.Logger
	now        func() time.Time

	// breaker fails calls fast during relay outages so lookups do not burn
	// the full relay budget on every attempt.
	breaker *circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock overrides the token clock for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithBreaker overrides the outage circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// New builds a relay client. An empty URL produces a client whose queries
// fail with CodeRelayError, which keeps wiring simple when no relay is
// configured.
func New(url, signingKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:        url,
		signingKey: []byte(signingKey),
		timeout:    timeout,
		http:       &http.Client{},
		now:        time.Now,
		breaker:    circuit.New("relay"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query performs one relay call for a domain.
func (c *Client) Query(ctx context.Context, domain string, opts Options) (*Response, error) {
	if c.url == "" {
		return nil, dErrors.New(dErrors.CodeRelayError, "no relay configured")
	}
	if !c.breaker.Allow() {
		return nil, dErrors.New(dErrors.CodeRelayError, "relay circuit open")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(request{Domain: domain, Options: opts})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "encode relay request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "build relay request")
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.serviceToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "sign relay token")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Newf(dErrors.CodeTimeout, "relay query for %s exceeded %s", domain, c.timeout)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "relay transport failure")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recordFailure()
		return nil, dErrors.Newf(dErrors.CodeRelayError, "relay returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.recordFailure()
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "read relay response")
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		c.recordFailure()
		return nil, dErrors.Wrap(err, dErrors.CodeRelayError, "decode relay response")
	}

	// A relay-reported domain error is still a healthy relay.
	c.breaker.RecordSuccess()

	if c.logger != nil {
		c.logger.Debug("relay query completed",
			"domain", domain,
			"pricing_only", opts.PricingOnly,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return &out, nil
}

func (c *Client) recordFailure() {
	if c.breaker.RecordFailure() && c.logger != nil {
		c.logger.Warn("relay circuit opened after repeated failures")
	}
}
