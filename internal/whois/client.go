// Package whois implements the legacy line-oriented WHOIS protocol client and
// a best-effort parser for its free-text responses.
package whois

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	dErrors "domainlens/pkg/domain-errors"
)

const (
	defaultPort  = "43"
	maxReplySize = 1 << 20
)

// denylistedHosts are servers known to be systematically slow or unreachable.
// TCP sockets carry no cross-origin restriction, but these are still skipped
// pre-emptively in favor of the relay to protect the lookup's latency budget.
var denylistedHosts = map[string]struct{}{
	"whois.cnnic.cn":    {},
	"whois.jprs.jp":     {},
	"whois.kr":          {},
	"whois.dot.ph":      {},
	"whois.registro.br": {},
}

// Client executes single bounded-time WHOIS queries over TCP.
type Client struct {
	timeout time.Duration
	dialer  *net.Dialer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a WHOIS client with a per-query budget covering dial and IO.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		timeout: timeout,
		dialer:  &net.Dialer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Skippable reports whether a host is on the maintained denylist and should
// be bypassed without a connection attempt.
func Skippable(host string) bool {
	_, ok := denylistedHosts[strings.ToLower(host)]
	return ok
}

// Query sends "{domain}\r\n" to {host}:43 and returns the raw free-text reply.
// Denylisted hosts fail fast without touching the network.
func (c *Client) Query(ctx context.Context, host, domain string) (string, error) {
	if Skippable(host) {
		return "", dErrors.Newf(dErrors.CodeTransportBlocked, "whois host %s is denylisted", host)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Hosts normally come without a port; directory entries may carry one.
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, defaultPort)
	}
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", dErrors.Newf(dErrors.CodeTimeout, "whois dial to %s exceeded %s", addr, c.timeout)
		}
		return "", dErrors.Wrap(err, dErrors.CodeTransportBlocked, fmt.Sprintf("whois dial to %s failed", addr))
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTransportBlocked, "send whois query")
	}

	start := time.Now()
	reply, err := io.ReadAll(io.LimitReader(conn, maxReplySize))
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", dErrors.Newf(dErrors.CodeTimeout, "whois read from %s exceeded budget", addr)
		}
		return "", dErrors.Wrap(err, dErrors.CodeServerError, "read whois reply")
	}
	if len(reply) == 0 {
		return "", dErrors.Newf(dErrors.CodeServerError, "empty whois reply from %s", addr)
	}

	if c.logger != nil {
		c.logger.Debug("whois query completed",
			"host", host,
			"domain", domain,
			"bytes", len(reply),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return string(reply), nil
}
