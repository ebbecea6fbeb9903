// Package suffix maps a domain suffix to the authoritative endpoint for each
// protocol. Resolution order: compiled static table, then the cached bootstrap
// feed, then (for WHOIS) the remotely-synced directory. Static entries always
// win so a drifting feed cannot regress known-good registries.
package suffix

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"domainlens/pkg/platform/sentinel"
)

// Mapping is the resolved endpoint set for one suffix. Either field may be
// empty when the suffix has no server for that protocol.
type Mapping struct {
	Suffix    string
	RDAPBase  string
	WhoisHost string
}

// Directory looks up WHOIS hosts from a remotely-synced table. Implementations
// return sentinel.ErrNotFound for unknown suffixes.
type Directory interface {
	Host(ctx context.Context, suffix string) (string, error)
}

// Registry resolves suffixes to endpoint mappings.
type Registry struct {
	feedURL     string
	feedTTL     time.Duration
	feedTimeout time.Duration
	client      *http.Client
	directory   Directory
	logger      *slog.Logger
	now         func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	feed      map[string]string
	fetchedAt time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithDirectory attaches the remotely-synced WHOIS directory.
func WithDirectory(d Directory) Option {
	return func(r *Registry) { r.directory = d }
}

// WithHTTPClient overrides the feed HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.client = c }
}

// WithFeedTTL overrides the feed freshness window.
func WithFeedTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.feedTTL = ttl }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry builds a registry backed by the given bootstrap feed URL.
func NewRegistry(feedURL string, feedTimeout time.Duration, opts ...Option) *Registry {
	r := &Registry{
		feedURL:     feedURL,
		feedTTL:     time.Hour,
		feedTimeout: feedTimeout,
		client:      &http.Client{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the endpoint mapping for a suffix. A suffix absent from
// every source yields sentinel.ErrNotFound; the orchestrator treats that as
// "cannot resolve via this protocol", not a hard failure.
func (r *Registry) Resolve(ctx context.Context, sfx string) (Mapping, error) {
	sfx = strings.ToLower(strings.TrimPrefix(sfx, "."))
	m := Mapping{Suffix: sfx}

	// Static tables answer without network I/O and take precedence.
	m.RDAPBase = staticRDAPBases[sfx]
	m.WhoisHost = staticWhoisHosts[sfx]

	if m.RDAPBase == "" {
		if base, ok := r.feedLookup(ctx, sfx); ok {
			m.RDAPBase = base
		}
	}

	if m.WhoisHost == "" && r.directory != nil {
		host, err := r.directory.Host(ctx, sfx)
		switch {
		case err == nil:
			m.WhoisHost = host
		case !errors.Is(err, sentinel.ErrNotFound) && r.logger != nil:
			r.logger.Warn("whois directory lookup failed", "suffix", sfx, "error", err)
		}
	}

	if m.RDAPBase == "" && m.WhoisHost == "" {
		return Mapping{}, sentinel.ErrNotFound
	}
	return m, nil
}

// feedLookup consults the bootstrap feed, refreshing it when stale. Concurrent
// refreshes collapse into a single fetch; a failed refresh keeps serving the
// last good feed so transient feed outages never hide previously known suffixes.
func (r *Registry) feedLookup(ctx context.Context, sfx string) (string, bool) {
	r.mu.RLock()
	fresh := r.feed != nil && r.now().Sub(r.fetchedAt) < r.feedTTL
	base, ok := r.feed[sfx]
	r.mu.RUnlock()

	if fresh {
		return base, ok
	}

	_, err, _ := r.group.Do("bootstrap", func() (any, error) {
		return nil, r.refreshFeed(ctx)
	})
	if err != nil && r.logger != nil {
		r.logger.Warn("bootstrap feed refresh failed", "error", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	base, ok = r.feed[sfx]
	return base, ok
}

// SuffixesOf returns the candidate suffixes for a domain, most specific first,
// so multi-label registries like co.uk resolve ahead of uk.
func SuffixesOf(domain string) []string {
	parts := strings.Split(strings.ToLower(domain), ".")
	if len(parts) < 2 {
		return nil
	}
	var out []string
	if len(parts) >= 3 {
		out = append(out, strings.Join(parts[len(parts)-2:], "."))
	}
	out = append(out, parts[len(parts)-1])
	return out
}
