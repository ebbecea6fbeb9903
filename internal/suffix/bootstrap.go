package suffix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// bootstrapDocument mirrors the IANA RDAP bootstrap shape: services is a list
// of [[suffixes...], [urls...]] pairs, first URL per group authoritative.
type bootstrapDocument struct {
	Services [][][]string `json:"services"`
}

const maxFeedBytes = 1 << 20

// refreshFeed fetches and parses the bootstrap feed, replacing the cached
// mapping on success. The fetch runs under its own short budget regardless of
// the caller's deadline so one slow feed pull cannot eat a lookup's budget.
func (r *Registry) refreshFeed(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.feedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, r.feedURL, nil)
	if err != nil {
		return fmt.Errorf("build bootstrap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch bootstrap feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bootstrap feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("read bootstrap feed: %w", err)
	}

	var doc bootstrapDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("parse bootstrap feed: %w", err)
	}

	feed := make(map[string]string)
	for _, svc := range doc.Services {
		if len(svc) < 2 || len(svc[1]) == 0 {
			continue
		}
		base := strings.TrimRight(svc[1][0], "/")
		if base == "" {
			continue
		}
		for _, sfx := range svc[0] {
			feed[strings.ToLower(sfx)] = base
		}
	}

	r.mu.Lock()
	r.feed = feed
	r.fetchedAt = r.now()
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("bootstrap feed refreshed", "suffixes", len(feed))
	}
	return nil
}
