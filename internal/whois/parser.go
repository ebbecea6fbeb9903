package whois

import (
	"encoding/json"
	"strings"
	"time"

	"domainlens/internal/lookup/models"
)

// Registry responses are free text with no common grammar; parsing is
// best-effort field extraction against the superset of layouts seen in the
// wild, never an attempt at a per-registry grammar.

var availabilityMarkers = []string{
	"no match for",
	"not found",
	"no entries found",
	"no data found",
	"object does not exist",
	"no objects found",
	"domain not found",
	"status: free",
	"status: available",
	"available for registration",
	"this domain name has not been registered",
}

var registeredMarkers = []string{
	"domain name:",
	"domain:",
	"registrar:",
	"creation date:",
	"registered on:",
	"domain status:",
	"registrant:",
	"registry domain id:",
	"nserver:",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"02/01/2006",
	"January 2 2006",
}

// Parse extracts the canonical field set from a raw WHOIS reply. The second
// return value reports whether the reply positively identified the domain as
// unregistered; the third whether the reply was recognizable at all.
func Parse(domain, body string) (models.RawFields, bool, bool) {
	lower := strings.ToLower(body)

	for _, marker := range availabilityMarkers {
		if strings.Contains(lower, marker) {
			return models.RawFields{Domain: domain, Source: models.SourceWhois}, true, true
		}
	}

	recognized := false
	for _, marker := range registeredMarkers {
		if strings.Contains(lower, marker) {
			recognized = true
			break
		}
	}
	if !recognized {
		return models.RawFields{Domain: domain, Source: models.SourceWhois}, false, false
	}

	capture, _ := json.Marshal(body)
	raw := models.RawFields{
		Domain:     domain,
		Source:     models.SourceWhois,
		Registrar:  firstField(body, "Registrar", "Sponsoring Registrar"),
		RawCapture: capture,
	}

	raw.CreatedAt = firstDate(body, "Creation Date", "Created On", "Registered on", "created", "Registration Time")
	raw.ExpiresAt = firstDate(body, "Registry Expiry Date", "Expiry Date", "Expiration Date", "Expiration Time", "paid-till", "Expires On")
	raw.UpdatedAt = firstDate(body, "Updated Date", "Last Modified", "Last Updated On", "modified")

	raw.NameServers = collectFields(body, "Name Server", "nserver", "Nameserver")
	raw.Statuses = collectFields(body, "Domain Status", "status")
	raw.Registrant = parseRegistrant(body)

	dnssec := strings.ToLower(firstField(body, "DNSSEC"))
	raw.DNSSEC = strings.Contains(dnssec, "signed") && !strings.Contains(dnssec, "unsigned")

	return raw, false, true
}

func parseRegistrant(body string) *models.Contact {
	c := &models.Contact{
		Name:         firstField(body, "Registrant Name"),
		Organization: firstField(body, "Registrant Organization", "Registrant Organisation"),
		Country:      firstField(body, "Registrant Country"),
		Email:        firstField(body, "Registrant Email"),
	}
	if *c == (models.Contact{}) {
		return nil
	}
	return c
}

// firstField returns the value of the first matching "Field: value" line,
// case-insensitively, trying field names in order.
func firstField(body string, fields ...string) string {
	for _, field := range fields {
		if v := fieldValue(body, field); v != "" {
			return v
		}
	}
	return ""
}

func fieldValue(body, field string) string {
	prefix := strings.ToLower(field) + ":"
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(trimmed), prefix) {
			continue
		}
		parts := strings.SplitN(trimmed, ":", 2)
		if len(parts) == 2 {
			if v := strings.TrimSpace(parts[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// collectFields gathers every value for repeatable fields like name servers,
// preserving response order and dropping duplicates.
func collectFields(body string, fields ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		lowerLine := strings.ToLower(trimmed)
		for _, field := range fields {
			prefix := strings.ToLower(field) + ":"
			if !strings.HasPrefix(lowerLine, prefix) {
				continue
			}
			parts := strings.SplitN(trimmed, ":", 2)
			if len(parts) != 2 {
				continue
			}
			// Status lines often carry a trailing ICANN URL; keep the token only.
			value := strings.TrimSpace(parts[1])
			if value == "" {
				continue
			}
			value = strings.Fields(value)[0]
			key := strings.ToLower(value)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, value)
			break
		}
	}
	return out
}

func firstDate(body string, fields ...string) *time.Time {
	v := firstField(body, fields...)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
