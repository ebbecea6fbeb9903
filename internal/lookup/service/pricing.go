package service

import (
	"context"
	"errors"
	"strings"

	"domainlens/internal/lookup/models"
	"domainlens/internal/relay"
	dErrors "domainlens/pkg/domain-errors"
	"domainlens/pkg/platform/sentinel"
)

// Pricing returns register/renew pricing for a domain, serving the cached
// value when the lookup already collected one. Deferred-pricing suffixes land
// here: consumers fetch their price on demand after the primary lookup.
func (s *Service) Pricing(ctx context.Context, domain string) (*models.Pricing, error) {
	domain, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	entry, cacheErr := s.cache.Get(ctx, domain)
	if cacheErr == nil && entry.Pricing != nil {
		return entry.Pricing, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, sentinel.ErrNotFound) && s.logger != nil {
		s.logger.Warn("cache read failed during pricing fetch", "domain", domain, "error", cacheErr)
	}

	pricing, err := s.fetchPricing(ctx, domain)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementPricingFetch("failed")
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementPricingFetch("ok")
	}

	// Fold the price into the live cache entry so the next lookup carries it.
	if cacheErr == nil {
		entry.Pricing = pricing
		if err := s.cache.Set(ctx, domain, entry); err != nil && s.logger != nil {
			s.logger.Warn("cache write failed after pricing fetch", "domain", domain, "error", err)
		}
	}
	return pricing, nil
}

func (s *Service) fetchPricing(ctx context.Context, domain string) (*models.Pricing, error) {
	resp, err := s.relay.Query(ctx, domain, relay.Options{PricingOnly: true})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, dErrors.Newf(dErrors.CodeRelayError, "relay pricing failed: %s", resp.Error)
	}
	if resp.Pricing == nil {
		return nil, dErrors.New(dErrors.CodeRelayError, "relay returned no pricing")
	}
	return resp.Pricing, nil
}

// pricingDeferred applies the country-code heuristic: two-letter suffixes
// often carry registry-specific pricing the relay resolves slowly, so the
// inline fetch is skipped when the policy is enabled.
func (s *Service) pricingDeferred(domain string) bool {
	if !s.deferCountryPricing {
		return false
	}
	i := strings.LastIndex(domain, ".")
	return i >= 0 && len(domain)-i-1 == 2
}
