// Package policy tracks, per endpoint origin, whether direct queries are
// known-good, known-blocked, or untried. The state is learned at runtime from
// transport failures and lives for the process lifetime only.
package policy

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// State classifies an endpoint origin for direct querying.
type State int

const (
	// Unknown origins are tried directly with a shorter time budget.
	Unknown State = iota
	// Allowed origins are safe to query directly with the full budget.
	Allowed
	// Blocked origins fail at the transport layer; route through the relay.
	Blocked
)

func (s State) String() string {
	switch s {
	case Allowed:
		return "allowed"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// FailureKind distinguishes connectivity-class failures from protocol-level
// ones. Only connectivity failures poison an origin: an HTTP 404 is a valid
// protocol answer ("domain not found") and must never flip state.
type FailureKind int

const (
	FailureConnectivity FailureKind = iota
	FailureHTTPStatus
	FailureTimeout
)

// Tracker is process-wide learned state. It is constructed explicitly and
// injected into the orchestrator so tests control its lifecycle; there is no
// package-level singleton.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]State
	seeds  map[string]State
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger attaches a logger for transition events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithSeeds pre-classifies curated origins before any traffic is seen.
func WithSeeds(allowed, blocked []string) Option {
	return func(t *Tracker) {
		for _, o := range allowed {
			t.seeds[normalizeOrigin(o)] = Allowed
		}
		for _, o := range blocked {
			t.seeds[normalizeOrigin(o)] = Blocked
		}
	}
}

// NewTracker builds a tracker seeded with the default curated sets.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		states: make(map[string]State),
		seeds:  make(map[string]State),
	}
	WithSeeds(defaultAllowedOrigins, defaultBlockedOrigins)(t)
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// Classify returns the current state for an origin.
func (t *Tracker) Classify(origin string) State {
	origin = normalizeOrigin(origin)
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[origin]
}

// RecordFailure transitions unknown origins to Blocked when the failure is
// connectivity-class. Protocol failures (HTTP statuses, timeouts) leave state
// untouched: the server was reachable, or may be on a retry. Returns true if
// the call transitioned the origin.
func (t *Tracker) RecordFailure(origin string, kind FailureKind) bool {
	if kind != FailureConnectivity {
		return false
	}
	origin = normalizeOrigin(origin)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[origin] == Blocked {
		return false
	}
	t.states[origin] = Blocked
	if t.logger != nil {
		t.logger.Info("origin blocked for direct queries", "origin", origin)
	}
	return true
}

// RecordSuccess promotes an Unknown origin to Allowed. Allowed and Blocked
// are sticky; Blocked is cleared only by Reset.
func (t *Tracker) RecordSuccess(origin string) {
	origin = normalizeOrigin(origin)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[origin] == Unknown {
		t.states[origin] = Allowed
	}
}

// Reset discards all learned state and re-applies the seeds.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]State, len(t.seeds))
	for origin, state := range t.seeds {
		t.states[origin] = state
	}
}

// OriginOf reduces a URL to its scheme://host origin for tracking.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return normalizeOrigin(rawURL)
	}
	return u.Scheme + "://" + strings.ToLower(u.Host)
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
