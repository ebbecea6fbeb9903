package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"domainlens/internal/lookup/models"
	dErrors "domainlens/pkg/domain-errors"
	"domainlens/pkg/platform/audit"
	"domainlens/pkg/platform/sentinel"
	"domainlens/pkg/requestcontext"
)

// Lookup resolves a domain, serving from cache when fresh and falling back
// through the tiered chain otherwise. Stale cache hits are returned
// immediately while a detached revalidation refreshes the entry.
func (s *Service) Lookup(ctx context.Context, domain string) (*models.Result, error) {
	domain, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	start := s.now()
	if s.metrics != nil {
		s.metrics.InFlightLookups.Inc()
		defer s.metrics.InFlightLookups.Dec()
	}

	entry, err := s.cache.Get(ctx, domain)
	switch {
	case err == nil && s.fresh(entry):
		if s.metrics != nil {
			s.metrics.IncrementCacheHit(true)
		}
		return s.resultFromEntry(entry), nil
	case err == nil:
		if s.metrics != nil {
			s.metrics.IncrementCacheHit(false)
		}
		s.revalidate(ctx, domain)
		return s.resultFromEntry(entry), nil
	case !errors.Is(err, sentinel.ErrNotFound):
		if s.logger != nil {
			s.logger.Warn("cache read failed, resolving directly", "domain", domain, "error", err)
		}
	}

	fresh, err := s.resolveShared(ctx, domain)
	if err != nil {
		s.observeLookup("failed", "", start)
		s.emit(ctx, audit.Event{
			Action:     audit.ActionLookupFailed,
			Domain:     domain,
			Reason:     err.Error(),
			RequestID:  requestID(ctx),
			DurationMs: time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	source := ""
	if fresh.Record != nil {
		source = string(fresh.Record.Source)
	}
	s.observeLookup(string(fresh.Verdict), source, start)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionLookupServed,
		Domain:     domain,
		Verdict:    string(fresh.Verdict),
		Source:     source,
		RequestID:  requestID(ctx),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return s.resultFromEntry(fresh), nil
}

// resolveShared funnels concurrent resolutions of one domain into a single
// network sequence. The flight runs on a detached context so the first
// caller's cancellation cannot fail waiters that arrived later.
func (s *Service) resolveShared(ctx context.Context, domain string) (*models.CacheEntry, error) {
	v, err, _ := s.flights.Do(domain, func() (any, error) {
		entry, err := s.resolve(context.WithoutCancel(ctx), domain)
		if err != nil {
			return nil, err
		}
		if storeErr := s.cache.Set(context.WithoutCancel(ctx), domain, entry); storeErr != nil && s.logger != nil {
			s.logger.Warn("cache write failed", "domain", domain, "error", storeErr)
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CacheEntry), nil
}

// revalidate refreshes a stale entry in the background. The outcome only
// updates the cache; failures are logged and swallowed. The singleflight
// keyspace is shared with foreground resolutions, so concurrent stale hits
// trigger at most one refresh.
func (s *Service) revalidate(ctx context.Context, domain string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		// Outcome accounting lives inside the flight so a refresh shared by
		// several stale hits is counted once.
		_, _, _ = s.flights.Do(domain, func() (any, error) {
			entry, err := s.resolve(detached, domain)
			if err == nil {
				err = s.cache.Set(detached, domain, entry)
			}
			result := "refreshed"
			if err != nil {
				result = "failed"
				if s.logger != nil {
					s.logger.Warn("background revalidation failed", "domain", domain, "error", err)
				}
			}
			if s.metrics != nil {
				s.metrics.IncrementRevalidation(result)
			}
			s.emit(detached, audit.Event{
				Action: audit.ActionCacheRevalidated,
				Domain: domain,
				Reason: result,
			})
			return entry, err
		})
	}()
}

func (s *Service) fresh(entry *models.CacheEntry) bool {
	return s.now().Sub(entry.InsertedAt) < s.cacheTTL
}

func (s *Service) resultFromEntry(entry *models.CacheEntry) *models.Result {
	cachedAt := entry.InsertedAt
	return &models.Result{
		Verdict:  entry.Verdict,
		Record:   entry.Record,
		Pricing:  entry.Pricing,
		CachedAt: &cachedAt,
	}
}

func (s *Service) observeLookup(outcome, source string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveLookup(outcome, source, float64(time.Since(start).Milliseconds()))
}

func requestID(ctx context.Context) string {
	return requestcontext.GetRequestID(ctx)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}

// NormalizeDomain canonicalizes user input to the cache and lookup key:
// lower-cased, trimmed, no trailing dot, no scheme prefix.
func NormalizeDomain(raw string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"https://", "http://"} {
		domain = strings.TrimPrefix(domain, prefix)
	}
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" || !strings.Contains(domain, ".") || strings.ContainsAny(domain, " \t") {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "not a resolvable domain name: %q", raw)
	}
	return domain, nil
}
