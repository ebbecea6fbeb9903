// Package normalize converts raw protocol payloads into the canonical record.
// Every function here is pure and deterministic: the same input always yields
// a byte-identical record, and every derived field is recomputed from the raw
// fields alone.
package normalize

import (
	"math"
	"strings"
	"time"

	"domainlens/internal/lookup/models"
)

const displayLayout = "Jan 2, 2006"

// ageTiers is ordered highest-first; the first tier the age qualifies for wins.
var ageTiers = []struct {
	years int
	label string
}{
	{30, "30+ years"},
	{20, "20+ years"},
	{15, "15+ years"},
	{10, "10+ years"},
	{5, "5+ years"},
	{1, "1+ years"},
}

// Canonicalize derives the full canonical record from raw protocol fields.
// The reference time is a parameter so callers and tests share one clock.
func Canonicalize(raw models.RawFields, now time.Time) *models.Record {
	rec := &models.Record{
		Domain:      strings.ToLower(raw.Domain),
		Registrar:   raw.Registrar,
		CreatedAt:   raw.CreatedAt,
		ExpiresAt:   raw.ExpiresAt,
		UpdatedAt:   raw.UpdatedAt,
		NameServers: lowerAll(raw.NameServers),
		Statuses:    append([]string(nil), raw.Statuses...),
		Registrant:  raw.Registrant,
		DNSSEC:      raw.DNSSEC,
		Source:      raw.Source,
		RawCapture:  raw.RawCapture,
	}

	rec.CreatedAtDisplay = display(raw.CreatedAt)
	rec.ExpiresAtDisplay = display(raw.ExpiresAt)
	rec.UpdatedAtDisplay = display(raw.UpdatedAt)

	rec.StatusLabels = TranslateStatuses(raw.Statuses)
	rec.UpdateLock = classifyLock(raw.Statuses)

	if raw.CreatedAt != nil {
		years := wholeYears(*raw.CreatedAt, now)
		rec.AgeYears = years
		rec.AgeTier = ageTier(years)
	}

	if raw.ExpiresAt != nil {
		days := remainingDays(*raw.ExpiresAt, now)
		rec.RemainingDays = &days
		rec.ExpiryUrgency = urgency(days)
	}

	rec.PrivacyProtected = detectPrivacy(raw.Registrant)
	rec.RegistrarWebsite = registrarWebsite(raw.Registrar)
	rec.DNSProvider = dnsProvider(rec.NameServers)

	return rec
}

// wholeYears counts completed years between two instants.
func wholeYears(from, now time.Time) int {
	if now.Before(from) {
		return 0
	}
	years := now.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

func ageTier(years int) string {
	for _, tier := range ageTiers {
		if years >= tier.years {
			return tier.label
		}
	}
	return "new"
}

// remainingDays is ceil((expiration − now) / 24h); negative for an already
// expired domain, which callers surface distinctly from "no expiration data".
func remainingDays(expires, now time.Time) int {
	return int(math.Ceil(expires.Sub(now).Hours() / 24))
}

func urgency(days int) models.ExpiryUrgency {
	switch {
	case days < 0:
		return models.UrgencyExpired
	case days <= 30:
		return models.UrgencyCritical
	case days <= 90:
		return models.UrgencyWarning
	default:
		return models.UrgencyNormal
	}
}

// privacyKeywords flag redacted or proxied registrant data. Matching is
// case-insensitive over name, organization, and email.
var privacyKeywords = []string{"privacy", "redacted", "proxy", "whoisguard", "withheld", "private"}

func detectPrivacy(c *models.Contact) bool {
	if c == nil {
		return false
	}
	for _, field := range []string{c.Name, c.Organization, c.Email} {
		lower := strings.ToLower(field)
		for _, kw := range privacyKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func display(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(displayLayout)
}

func lowerAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
