package normalize

import (
	"strings"

	"domainlens/internal/lookup/models"
)

// statusSynonyms maps canonicalized status tokens (lower-cased, separators
// stripped) to their translated labels. Unknown tokens pass through unchanged
// rather than being dropped.
var statusSynonyms = map[string]string{
	"ok":     "active",
	"active": "active",

	"inactive": "inactive",

	"clientdeleteprohibited": "delete-locked",
	"serverdeleteprohibited": "delete-locked",
	"deleteprohibited":       "delete-locked",

	"clienttransferprohibited": "transfer-locked",
	"servertransferprohibited": "transfer-locked",
	"transferprohibited":       "transfer-locked",

	"clientupdateprohibited": "update-locked",
	"serverupdateprohibited": "update-locked",
	"updateprohibited":       "update-locked",

	"clientrenewprohibited": "renew-locked",
	"serverrenewprohibited": "renew-locked",

	"clienthold": "hold",
	"serverhold": "hold",

	"pendingcreate":   "pending-create",
	"pendingdelete":   "pending-delete",
	"pendingtransfer": "pending-transfer",
	"pendingupdate":   "pending-update",
	"pendingrenew":    "pending-renew",

	"redemptionperiod": "redemption",
	"autorenewperiod":  "auto-renew-grace",
	"addperiod":        "add-grace",
}

var statusSeparators = strings.NewReplacer(" ", "", "-", "", "_", "")

func canonicalStatusToken(raw string) string {
	return statusSeparators.Replace(strings.ToLower(strings.TrimSpace(raw)))
}

// TranslateStatuses maps raw status tokens through the synonym table,
// preserving order and passing unknown tokens through unmodified.
func TranslateStatuses(raw []string) []string {
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		label, ok := statusSynonyms[canonicalStatusToken(token)]
		if !ok {
			label = token
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// classifyLock derives the update-lock posture from raw statuses. Full lock
// requires the three client-side prohibitions together; transfer prohibition
// alone classifies as transfer-locked.
func classifyLock(raw []string) models.UpdateLock {
	present := make(map[string]bool, len(raw))
	for _, token := range raw {
		present[canonicalStatusToken(token)] = true
	}

	if present["clientdeleteprohibited"] && present["clienttransferprohibited"] && present["clientupdateprohibited"] {
		return models.LockFull
	}
	if present["clienttransferprohibited"] || present["servertransferprohibited"] || present["transferprohibited"] {
		return models.LockTransfer
	}
	return ""
}
