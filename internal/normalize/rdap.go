package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"domainlens/internal/lookup/models"
)

// rdapDomain is the subset of the RDAP domain schema this engine consumes.
type rdapDomain struct {
	LDHName     string   `json:"ldhName"`
	UnicodeName string   `json:"unicodeName"`
	Status      []string `json:"status"`
	Events      []struct {
		Action string `json:"eventAction"`
		Date   string `json:"eventDate"`
	} `json:"events"`
	Nameservers []struct {
		LDHName string `json:"ldhName"`
	} `json:"nameservers"`
	Entities  []rdapEntity `json:"entities"`
	SecureDNS struct {
		DelegationSigned bool `json:"delegationSigned"`
	} `json:"secureDNS"`
}

type rdapEntity struct {
	Roles      []string        `json:"roles"`
	VCardArray json.RawMessage `json:"vcardArray"`
	Entities   []rdapEntity    `json:"entities"`
}

// FromRDAP extracts raw fields from an RDAP JSON payload. Extraction is
// best-effort: unrecognized event tags and malformed vcards are skipped, and
// the original payload is preserved as the raw capture.
func FromRDAP(domain string, body []byte) (models.RawFields, error) {
	raw := models.RawFields{
		Domain:     domain,
		Source:     models.SourceRDAP,
		RawCapture: json.RawMessage(body),
	}

	var doc rdapDomain
	if err := json.Unmarshal(body, &doc); err != nil {
		return raw, fmt.Errorf("decode rdap payload: %w", err)
	}

	if doc.LDHName != "" {
		raw.Domain = strings.ToLower(doc.LDHName)
	}
	raw.Statuses = doc.Status
	raw.DNSSEC = doc.SecureDNS.DelegationSigned

	for _, ns := range doc.Nameservers {
		if ns.LDHName != "" {
			raw.NameServers = append(raw.NameServers, strings.ToLower(ns.LDHName))
		}
	}

	for _, ev := range doc.Events {
		t, err := time.Parse(time.RFC3339, ev.Date)
		if err != nil {
			continue
		}
		t = t.UTC()
		switch strings.ToLower(ev.Action) {
		case "registration":
			raw.CreatedAt = &t
		case "expiration":
			raw.ExpiresAt = &t
		case "last changed", "last update", "last updated":
			raw.UpdatedAt = &t
		}
		// Other event tags are valid RDAP but irrelevant here.
	}

	raw.Registrar = findEntityName(doc.Entities, "registrar")
	raw.Registrant = findRegistrant(doc.Entities)

	return raw, nil
}

func findEntityName(entities []rdapEntity, role string) string {
	for _, e := range entities {
		if hasRole(e.Roles, role) {
			if name := vcardText(e.VCardArray, "fn"); name != "" {
				return name
			}
		}
		if name := findEntityName(e.Entities, role); name != "" {
			return name
		}
	}
	return ""
}

func findRegistrant(entities []rdapEntity) *models.Contact {
	for _, e := range entities {
		if hasRole(e.Roles, "registrant") {
			c := &models.Contact{
				Name:         vcardText(e.VCardArray, "fn"),
				Organization: vcardText(e.VCardArray, "org"),
				Email:        vcardText(e.VCardArray, "email"),
				Country:      vcardCountry(e.VCardArray),
			}
			if *c != (models.Contact{}) {
				return c
			}
		}
		if c := findRegistrant(e.Entities); c != nil {
			return c
		}
	}
	return nil
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, want) {
			return true
		}
	}
	return false
}

// vcardText pulls the value of a named property from a jCard array, shaped
// ["vcard", [[name, params, type, value], ...]].
func vcardText(rawCard json.RawMessage, prop string) string {
	for _, entry := range vcardProps(rawCard) {
		if len(entry) < 4 {
			continue
		}
		name, _ := entry[0].(string)
		if !strings.EqualFold(name, prop) {
			continue
		}
		if v, ok := entry[3].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// vcardCountry reads the country name from an adr property, whose value is a
// seven-element address array with the country last.
func vcardCountry(rawCard json.RawMessage) string {
	for _, entry := range vcardProps(rawCard) {
		if len(entry) < 4 {
			continue
		}
		name, _ := entry[0].(string)
		if !strings.EqualFold(name, "adr") {
			continue
		}
		addr, ok := entry[3].([]any)
		if !ok || len(addr) == 0 {
			continue
		}
		if country, ok := addr[len(addr)-1].(string); ok && country != "" {
			return country
		}
	}
	return ""
}

func vcardProps(rawCard json.RawMessage) [][]any {
	if len(rawCard) == 0 {
		return nil
	}
	var card []any
	if err := json.Unmarshal(rawCard, &card); err != nil || len(card) < 2 {
		return nil
	}
	props, ok := card[1].([]any)
	if !ok {
		return nil
	}
	out := make([][]any, 0, len(props))
	for _, p := range props {
		if entry, ok := p.([]any); ok {
			out = append(out, entry)
		}
	}
	return out
}
