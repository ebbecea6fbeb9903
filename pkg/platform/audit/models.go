// Package audit defines the lookup audit trail. Events capture which
// resolution path served a domain and why fallbacks happened, so operators
// can trace registry behavior changes without scraping logs.
package audit

import "time"

// Action names a single auditable step in the lookup pipeline.
type Action string

const (
	// ActionLookupServed records a lookup answered with a verdict.
	ActionLookupServed Action = "lookup_served"
	// ActionLookupFailed records a lookup that exhausted all tiers.
	ActionLookupFailed Action = "lookup_failed"
	// ActionRelayFallback records a direct-path failure that moved the
	// lookup to the relay tier.
	ActionRelayFallback Action = "relay_fallback"
	// ActionOriginBlocked records a transport policy transition to Blocked.
	ActionOriginBlocked Action = "origin_blocked"
	// ActionCacheRevalidated records a background stale-entry refresh.
	ActionCacheRevalidated Action = "cache_revalidated"
)

// Event is emitted from lookup logic to capture key resolution outcomes.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Domain     string    `json:"domain,omitempty"`
	Suffix     string    `json:"suffix,omitempty"`
	Source     string    `json:"source,omitempty"`
	Verdict    string    `json:"verdict,omitempty"`
	Origin     string    `json:"origin,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}
