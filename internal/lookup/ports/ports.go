// Package ports defines shared interfaces for the lookup module.
// Interfaces are placed here when consumed by the orchestrator and its tests
// to avoid coupling the service to concrete clients.
package ports

import (
	"context"
	"time"

	"domainlens/internal/lookup/models"
	"domainlens/internal/policy"
	"domainlens/internal/relay"
	"domainlens/internal/suffix"
	"domainlens/pkg/platform/audit"
)

// SuffixResolver maps a domain's suffix to its protocol endpoints.
type SuffixResolver interface {
	// Resolve returns the endpoint mapping for a suffix, or
	// sentinel.ErrNotFound when neither protocol has an endpoint.
	Resolve(ctx context.Context, sfx string) (suffix.Mapping, error)
}

// PolicyTracker learns per-origin transport reachability.
type PolicyTracker interface {
	// Classify returns the current state for an origin.
	Classify(origin string) policy.State

	// RecordFailure reports a failed direct attempt. Only connectivity
	// failures transition the origin to Blocked; the return value reports
	// whether this call performed the transition.
	RecordFailure(origin string, kind policy.FailureKind) bool

	// RecordSuccess marks an Unknown origin as Allowed.
	RecordSuccess(origin string)
}

// RDAPQuerier fetches one RDAP domain object.
type RDAPQuerier interface {
	Query(ctx context.Context, base, domain string, budget time.Duration) ([]byte, error)
}

// WhoisQuerier fetches one raw WHOIS reply.
type WhoisQuerier interface {
	Query(ctx context.Context, host, domain string) (string, error)
}

// RelayQuerier performs lookups through the trusted intermediary.
type RelayQuerier interface {
	Query(ctx context.Context, domain string, opts relay.Options) (*relay.Response, error)
}

// CacheStore persists lookup results keyed by domain. Implementations own
// retention; freshness is the orchestrator's concern.
type CacheStore interface {
	// Get returns the stored entry or sentinel.ErrNotFound.
	Get(ctx context.Context, domain string) (*models.CacheEntry, error)

	// Set stores an entry, replacing any previous one.
	Set(ctx context.Context, domain string, entry *models.CacheEntry) error

	// Delete removes an entry if present.
	Delete(ctx context.Context, domain string) error
}

// AuditPublisher emits audit events for resolution outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
