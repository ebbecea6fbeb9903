package models

import (
	"encoding/json"
	"time"
)

// Source names the protocol that produced a record.
type Source string

const (
	SourceRDAP  Source = "rdap"
	SourceWhois Source = "whois"
)

// Verdict is the registration verdict for a domain.
type Verdict string

const (
	VerdictRegistered Verdict = "registered"
	VerdictAvailable  Verdict = "available"
)

// Contact holds registrant fields. Consumers suppress these when the record
// is privacy-protected.
type Contact struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Country      string `json:"country,omitempty"`
	Email        string `json:"email,omitempty"`
}

// RawFields is the protocol-agnostic intermediate both clients produce. The
// normalizer derives everything else from these fields and nothing but these
// fields, which keeps derivation idempotent.
type RawFields struct {
	Domain      string          `json:"domain"`
	Registrar   string          `json:"registrar,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
	NameServers []string        `json:"nameServers,omitempty"`
	Statuses    []string        `json:"statuses,omitempty"`
	Registrant  *Contact        `json:"registrant,omitempty"`
	DNSSEC      bool            `json:"dnssec"`
	Source      Source          `json:"source"`
	RawCapture  json.RawMessage `json:"rawCapture,omitempty"`
}

// ExpiryUrgency buckets remaining validity.
type ExpiryUrgency string

const (
	UrgencyCritical ExpiryUrgency = "critical" // ≤30 days
	UrgencyWarning  ExpiryUrgency = "warning"  // ≤90 days
	UrgencyNormal   ExpiryUrgency = "normal"
	UrgencyExpired  ExpiryUrgency = "expired" // already past expiration
)

// UpdateLock classifies registry lock posture from translated statuses.
type UpdateLock string

const (
	LockFull     UpdateLock = "fully-locked"
	LockTransfer UpdateLock = "transfer-locked"
)

// Record is the resolved, normalized truth about one domain. Derived fields
// (age tier, remaining days, lock, privacy flag, provider identification) are
// pure functions of the raw fields.
type Record struct {
	Domain string `json:"domain"`

	Registrar        string `json:"registrar,omitempty"`
	RegistrarWebsite string `json:"registrarWebsite,omitempty"`
	DNSProvider      string `json:"dnsProvider,omitempty"`

	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
	CreatedAtDisplay string     `json:"createdAtDisplay,omitempty"`
	ExpiresAtDisplay string     `json:"expiresAtDisplay,omitempty"`
	UpdatedAtDisplay string     `json:"updatedAtDisplay,omitempty"`

	NameServers  []string `json:"nameServers,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
	StatusLabels []string `json:"statusLabels,omitempty"`

	Registrant       *Contact `json:"registrant,omitempty"`
	PrivacyProtected bool     `json:"privacyProtected"`

	DNSSEC bool   `json:"dnssec"`
	Source Source `json:"source"`

	AgeYears      int           `json:"ageYears"`
	AgeTier       string        `json:"ageTier,omitempty"`
	RemainingDays *int          `json:"remainingDays,omitempty"`
	ExpiryUrgency ExpiryUrgency `json:"expiryUrgency,omitempty"`
	UpdateLock    UpdateLock    `json:"updateLock,omitempty"`

	// RawCapture preserves the upstream payload for audit and debugging; it is
	// also the degradation path when normalization can only fill partial fields.
	RawCapture json.RawMessage `json:"rawCapture,omitempty"`
}

// Pricing is the auxiliary price data the relay exposes.
type Pricing struct {
	RegisterPrice float64 `json:"registerPrice"`
	RenewPrice    float64 `json:"renewPrice"`
	IsPremium     bool    `json:"isPremium"`
}

// CacheEntry is one cached resolution. Freshness is judged against InsertedAt
// by the service; the store only enforces the hard retention window.
type CacheEntry struct {
	Record     *Record   `json:"record,omitempty"`
	Pricing    *Pricing  `json:"pricing,omitempty"`
	Verdict    Verdict   `json:"verdict"`
	InsertedAt time.Time `json:"insertedAt"`
}

// Result is the closed outcome of a lookup: a verdict plus the record and
// pricing when registered. Failures travel separately as coded errors.
type Result struct {
	Verdict  Verdict    `json:"verdict"`
	Record   *Record    `json:"record,omitempty"`
	Pricing  *Pricing   `json:"pricing,omitempty"`
	CachedAt *time.Time `json:"cachedAt,omitempty"`
}
