package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"domainlens/internal/lookup/models"
	"domainlens/internal/normalize"
	"domainlens/internal/policy"
	"domainlens/internal/relay"
	"domainlens/internal/suffix"
	"domainlens/internal/whois"
	dErrors "domainlens/pkg/domain-errors"
	"domainlens/pkg/platform/audit"
)

// lookupState enumerates the orchestrator's per-lookup state machine. Every
// terminal and non-terminal state and its entry conditions are explicit so
// fallback behavior stays independently testable.
type lookupState int

const (
	stateInit lookupState = iota
	stateResolvingEndpoint
	stateDirectQuery
	stateNeedsRelay
	stateSuccess
	stateAvailable
	stateFailed
)

// resolution carries one lookup through the state machine.
type resolution struct {
	domain  string
	state   lookupState
	mapping suffix.Mapping
	record  *models.Record

	// lastErr is the most specific failure seen so far; relayReason names
	// the trigger that moved the lookup to the relay tier.
	lastErr     error
	relayReason string
	err         error
}

// resolve runs the fallback chain for one domain and returns a cache entry
// for a terminal Success or Available state. Failed lookups return the most
// specific error collected along the way. Pricing is fetched concurrently so
// it never extends the primary path.
func (s *Service) resolve(ctx context.Context, domain string) (*models.CacheEntry, error) {
	var pricing *models.Pricing
	g, gctx := errgroup.WithContext(ctx)
	if s.pricingDeferred(domain) {
		if s.metrics != nil {
			s.metrics.PricingDeferredTotal.Inc()
		}
	} else {
		g.Go(func() error {
			p, err := s.fetchPricing(gctx, domain)
			if err != nil {
				if s.metrics != nil {
					s.metrics.IncrementPricingFetch("failed")
				}
				if s.logger != nil {
					s.logger.Debug("pricing fetch failed", "domain", domain, "error", err)
				}
				return nil
			}
			pricing = p
			if s.metrics != nil {
				s.metrics.IncrementPricingFetch("ok")
			}
			return nil
		})
	}

	res := &resolution{domain: domain, state: stateInit}
	for {
		switch res.state {
		case stateInit:
			res.state = stateResolvingEndpoint
		case stateResolvingEndpoint:
			s.stepResolveEndpoint(ctx, res)
		case stateDirectQuery:
			s.stepDirectQuery(ctx, res)
		case stateNeedsRelay:
			s.stepRelay(ctx, res)
		case stateSuccess:
			_ = g.Wait()
			return &models.CacheEntry{
				Record:     res.record,
				Pricing:    pricing,
				Verdict:    models.VerdictRegistered,
				InsertedAt: s.now(),
			}, nil
		case stateAvailable:
			_ = g.Wait()
			return &models.CacheEntry{
				Pricing:    pricing,
				Verdict:    models.VerdictAvailable,
				InsertedAt: s.now(),
			}, nil
		case stateFailed:
			_ = g.Wait()
			return nil, res.err
		}
	}
}

// stepResolveEndpoint maps the domain's suffix to protocol endpoints, most
// specific suffix first. An unresolvable suffix is not a hard failure; the
// relay covers registries the registry tables do not know.
func (s *Service) stepResolveEndpoint(ctx context.Context, res *resolution) {
	for _, sfx := range suffix.SuffixesOf(res.domain) {
		mapping, err := s.registry.Resolve(ctx, sfx)
		if err != nil {
			continue
		}
		res.mapping = mapping
		res.state = stateDirectQuery
		return
	}
	res.lastErr = dErrors.Newf(dErrors.CodeEndpointUnresolved, "no known endpoint for %s", res.domain)
	s.toRelay(ctx, res, "endpoint_unresolved")
}

// stepDirectQuery attempts the single direct protocol attempt: RDAP when the
// suffix has an RDAP base, otherwise WHOIS. Failures advance to the relay
// tier rather than surfacing, except the positive "not registered" answer.
func (s *Service) stepDirectQuery(ctx context.Context, res *resolution) {
	if res.mapping.RDAPBase != "" {
		s.directRDAP(ctx, res)
		return
	}
	if res.mapping.WhoisHost != "" {
		s.directWhois(ctx, res)
		return
	}
	res.lastErr = dErrors.Newf(dErrors.CodeEndpointUnresolved, "suffix %s has no usable endpoint", res.mapping.Suffix)
	s.toRelay(ctx, res, "endpoint_unresolved")
}

func (s *Service) directRDAP(ctx context.Context, res *resolution) {
	origin := policy.OriginOf(res.mapping.RDAPBase)

	var budget = s.budgetAllowed
	switch s.tracker.Classify(origin) {
	case policy.Blocked:
		s.toRelay(ctx, res, "origin_blocked")
		return
	case policy.Unknown:
		budget = s.budgetUnknown
	}

	body, err := s.rdap.Query(ctx, res.mapping.RDAPBase, res.domain, budget)
	if err == nil {
		s.tracker.RecordSuccess(origin)
		raw, parseErr := normalize.FromRDAP(res.domain, body)
		if parseErr != nil && s.logger != nil {
			// Partial fields plus the raw capture still beat discarding
			// the response.
			s.logger.Warn("rdap payload only partially parsed", "domain", res.domain, "error", parseErr)
		}
		res.record = normalize.Canonicalize(raw, s.now())
		res.state = stateSuccess
		return
	}

	res.lastErr = err
	switch {
	case dErrors.HasCode(err, dErrors.CodeNotRegistered):
		res.state = stateAvailable
	case dErrors.HasCode(err, dErrors.CodeTransportBlocked):
		if s.tracker.RecordFailure(origin, policy.FailureConnectivity) {
			if s.metrics != nil {
				s.metrics.IncrementOriginBlocked()
			}
			s.emit(ctx, audit.Event{
				Action: audit.ActionOriginBlocked,
				Domain: res.domain,
				Origin: origin,
			})
		}
		s.toRelay(ctx, res, "transport_blocked")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		s.tracker.RecordFailure(origin, policy.FailureTimeout)
		s.toRelay(ctx, res, "timeout")
	default:
		s.tracker.RecordFailure(origin, policy.FailureHTTPStatus)
		s.toRelay(ctx, res, "server_error")
	}
}

func (s *Service) directWhois(ctx context.Context, res *resolution) {
	host := res.mapping.WhoisHost
	if whois.Skippable(host) {
		res.lastErr = dErrors.Newf(dErrors.CodeTransportBlocked, "whois host %s is denylisted", host)
		s.toRelay(ctx, res, "whois_denylisted")
		return
	}

	reply, err := s.whois.Query(ctx, host, res.domain)
	if err != nil {
		res.lastErr = err
		s.toRelay(ctx, res, "whois_failed")
		return
	}

	raw, available, recognized := whois.Parse(res.domain, reply)
	if !recognized {
		res.lastErr = dErrors.Newf(dErrors.CodeParseError, "unrecognized whois layout from %s", host)
		s.toRelay(ctx, res, "whois_unparsed")
		return
	}
	if available {
		res.state = stateAvailable
		return
	}
	res.record = normalize.Canonicalize(raw, s.now())
	res.state = stateSuccess
}

// stepRelay is the mandatory last tier. A relay record is authoritative; a
// relay availability flag is terminal; anything else ends the lookup with
// the most specific error available.
func (s *Service) stepRelay(ctx context.Context, res *resolution) {
	resp, err := s.relay.Query(ctx, res.domain, relay.Options{SkipPricing: true})
	if err != nil {
		res.err = s.mostSpecific(res.lastErr, err)
		res.state = stateFailed
		return
	}

	switch {
	case resp.IsAvailable != nil && *resp.IsAvailable:
		res.state = stateAvailable
	case resp.Primary != nil:
		raw := *resp.Primary
		if raw.Domain == "" {
			raw.Domain = res.domain
		}
		if raw.Source == "" {
			raw.Source = models.SourceRDAP
		}
		res.record = normalize.Canonicalize(raw, s.now())
		res.state = stateSuccess
	case resp.Error != "":
		res.err = s.mostSpecific(res.lastErr, dErrors.Newf(dErrors.CodeRelayError, "relay reported: %s", resp.Error))
		res.state = stateFailed
	default:
		res.err = s.mostSpecific(res.lastErr, dErrors.New(dErrors.CodeRelayError, "relay returned neither record nor availability"))
		res.state = stateFailed
	}
}

// toRelay records the fallback trigger and advances to the relay tier.
func (s *Service) toRelay(ctx context.Context, res *resolution, reason string) {
	res.relayReason = reason
	res.state = stateNeedsRelay
	if s.metrics != nil {
		s.metrics.IncrementRelayFallback(reason)
	}
	s.emit(ctx, audit.Event{
		Action:    audit.ActionRelayFallback,
		Domain:    res.domain,
		Reason:    reason,
		RequestID: requestID(ctx),
	})
}

// mostSpecific prefers the direct tier's typed failure over a generic relay
// failure, so callers see why the primary path broke.
func (s *Service) mostSpecific(direct, relayErr error) error {
	if direct == nil {
		return relayErr
	}
	if dErrors.HasCode(direct, dErrors.CodeEndpointUnresolved) {
		// The relay was the only viable tier; its failure is the story.
		return relayErr
	}
	return dErrors.Wrap(direct, dErrors.CodeOf(direct), "direct and relay tiers both failed")
}
