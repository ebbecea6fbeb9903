// Package service implements the fallback orchestrator, the resolution
// engine's entry point. It sequences suffix resolution, transport policy,
// direct protocol clients, and the relay, caching terminal results with
// stale-while-revalidate semantics.
package service

import (
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"domainlens/internal/lookup/metrics"
	"domainlens/internal/lookup/ports"
	dErrors "domainlens/pkg/domain-errors"
)

const (
	defaultCacheTTL      = 10 * time.Minute
	defaultBudgetAllowed = 6 * time.Second
	defaultBudgetUnknown = 4 * time.Second
)

// Service resolves domains through the tiered fallback chain. One instance
// owns the process-wide learned state (policy tracker, feed cache) through
// its injected collaborators.
type Service struct {
	registry ports.SuffixResolver
	tracker  ports.PolicyTracker
	rdap     ports.RDAPQuerier
	whois    ports.WhoisQuerier
	relay    ports.RelayQuerier
	cache    ports.CacheStore

	audit   ports.AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	// flights collapses concurrent resolutions of the same domain into one
	// network sequence; stale revalidations share the same keyspace.
	flights singleflight.Group

	cacheTTL      time.Duration
	budgetAllowed time.Duration
	budgetUnknown time.Duration

	deferCountryPricing bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches an audit publisher.
func WithAudit(pub ports.AuditPublisher) Option {
	return func(s *Service) { s.audit = pub }
}

// WithClock overrides the freshness clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCacheTTL overrides the freshness window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithBudgets overrides the tiered direct-query budgets.
func WithBudgets(allowed, unknown time.Duration) Option {
	return func(s *Service) {
		s.budgetAllowed = allowed
		s.budgetUnknown = unknown
	}
}

// WithCountryPricingDeferral controls whether two-letter suffixes skip the
// inline pricing fetch.
func WithCountryPricingDeferral(enabled bool) Option {
	return func(s *Service) { s.deferCountryPricing = enabled }
}

// New builds the orchestrator. All collaborators except audit and metrics
// are required.
func New(
	registry ports.SuffixResolver,
	tracker ports.PolicyTracker,
	rdapClient ports.RDAPQuerier,
	whoisClient ports.WhoisQuerier,
	relayClient ports.RelayQuerier,
	cache ports.CacheStore,
	opts ...Option,
) (*Service, error) {
	if registry == nil || tracker == nil || rdapClient == nil || whoisClient == nil || relayClient == nil || cache == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "lookup service requires all collaborators")
	}
	s := &Service{
		registry:      registry,
		tracker:       tracker,
		rdap:          rdapClient,
		whois:         whoisClient,
		relay:         relayClient,
		cache:         cache,
		now:           time.Now,
		cacheTTL:      defaultCacheTTL,
		budgetAllowed: defaultBudgetAllowed,
		budgetUnknown: defaultBudgetUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
