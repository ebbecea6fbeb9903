package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domainlens/internal/lookup/models"
	"domainlens/internal/lookup/store"
	"domainlens/internal/policy"
	"domainlens/internal/relay"
	"domainlens/internal/suffix"
	dErrors "domainlens/pkg/domain-errors"
	"domainlens/pkg/platform/sentinel"
)

type fakeRegistry struct {
	mappings map[string]suffix.Mapping
}

func (f *fakeRegistry) Resolve(_ context.Context, sfx string) (suffix.Mapping, error) {
	if m, ok := f.mappings[sfx]; ok {
		return m, nil
	}
	return suffix.Mapping{}, fmt.Errorf("suffix %s: %w", sfx, sentinel.ErrNotFound)
}

type rdapReply struct {
	body []byte
	err  error
}

type fakeRDAP struct {
	mu      sync.Mutex
	replies map[string]rdapReply
	calls   atomic.Int64
	delay   time.Duration
}

func (f *fakeRDAP) Query(ctx context.Context, _, domain string, _ time.Duration) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "budget exceeded")
		}
	}
	f.mu.Lock()
	reply, ok := f.replies[domain]
	f.mu.Unlock()
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeServerError, "no scripted reply for %s", domain)
	}
	return reply.body, reply.err
}

type fakeWhois struct {
	reply string
	err   error
	calls atomic.Int64
}

func (f *fakeWhois) Query(context.Context, string, string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

type fakeRelay struct {
	mu           sync.Mutex
	resp         *relay.Response
	err          error
	primaryCalls int
	pricingCalls int
}

func (f *fakeRelay) Query(_ context.Context, _ string, opts relay.Options) (*relay.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opts.PricingOnly {
		f.pricingCalls++
		return &relay.Response{Pricing: &models.Pricing{RegisterPrice: 9.99, RenewPrice: 12.99}}, nil
	}
	f.primaryCalls++
	return f.resp, f.err
}

func (f *fakeRelay) counts() (primary, pricing int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.primaryCalls, f.pricingCalls
}

const rdapComPayload = `{
	"ldhName": "EXAMPLE.COM",
	"status": ["client transfer prohibited"],
	"events": [
		{"eventAction": "registration", "eventDate": "2000-03-01T10:00:00Z"},
		{"eventAction": "expiration", "eventDate": "2030-03-01T10:00:00Z"}
	],
	"nameservers": [{"ldhName": "NS1.EXAMPLE.COM"}],
	"secureDNS": {"delegationSigned": true}
}`

type ServiceSuite struct {
	suite.Suite

	now      time.Time
	nowMu    sync.Mutex
	registry *fakeRegistry
	tracker  *policy.Tracker
	rdap     *fakeRDAP
	whois    *fakeWhois
	relay    *fakeRelay
	cache    *store.InMemoryStore
	svc      *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		s.nowMu.Lock()
		defer s.nowMu.Unlock()
		return s.now
	}

	s.registry = &fakeRegistry{mappings: map[string]suffix.Mapping{
		"com": {Suffix: "com", RDAPBase: "https://rdap.example-registry.test/com/v1"},
		"de":  {Suffix: "de", WhoisHost: "whois.denic.test"},
	}}
	s.tracker = policy.NewTracker(policy.WithSeeds(nil, nil))
	s.rdap = &fakeRDAP{replies: map[string]rdapReply{
		"example.com": {body: []byte(rdapComPayload)},
	}}
	s.whois = &fakeWhois{}
	s.relay = &fakeRelay{}
	s.cache = store.NewInMemoryStore(24*time.Hour, store.WithClock(clock))

	svc, err := New(s.registry, s.tracker, s.rdap, s.whois, s.relay, s.cache,
		WithClock(clock),
		WithCacheTTL(10*time.Minute),
	)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.nowMu.Lock()
	s.now = s.now.Add(d)
	s.nowMu.Unlock()
}

func (s *ServiceSuite) TestDirectRDAPSuccess() {
	result, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)

	s.Equal(models.VerdictRegistered, result.Verdict)
	s.Require().NotNil(result.Record)
	s.Equal("example.com", result.Record.Domain)
	s.Equal(models.SourceRDAP, result.Record.Source)
	s.Contains(result.Record.StatusLabels, "transfer-locked")
	s.True(result.Record.DNSSEC)

	primary, pricing := s.relay.counts()
	s.Zero(primary, "direct success must not touch the relay primary path")
	s.Equal(1, pricing, "pricing rides alongside the primary lookup")
	s.Require().NotNil(result.Pricing)
	s.InDelta(9.99, result.Pricing.RegisterPrice, 0.001)

	s.Equal(policy.Allowed, s.tracker.Classify("https://rdap.example-registry.test"),
		"a direct success must mark the origin allowed")
}

func (s *ServiceSuite) TestNotFoundIsAvailableWithoutRelay() {
	s.rdap.replies["free.com"] = rdapReply{err: dErrors.New(dErrors.CodeNotRegistered, "404")}

	result, err := s.svc.Lookup(context.Background(), "free.com")
	s.Require().NoError(err)
	s.Equal(models.VerdictAvailable, result.Verdict)
	s.Nil(result.Record)

	primary, _ := s.relay.counts()
	s.Zero(primary, "a 404 is terminal; no relay call may be issued")
}

func (s *ServiceSuite) TestBlockedOriginSkipsDirectQuery() {
	s.tracker.RecordFailure("https://rdap.example-registry.test", policy.FailureConnectivity)
	s.relay.resp = &relay.Response{Primary: &models.RawFields{
		Domain:    "example.com",
		Registrar: "Via Relay Inc",
		Source:    models.SourceRDAP,
	}}

	result, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.Equal(models.VerdictRegistered, result.Verdict)
	s.Equal("Via Relay Inc", result.Record.Registrar)

	s.Zero(s.rdap.calls.Load(), "blocked origins must not see direct requests")
	primary, _ := s.relay.counts()
	s.Equal(1, primary)
}

func (s *ServiceSuite) TestConnectivityFailureLearnsAndReroutes() {
	s.rdap.replies["first.com"] = rdapReply{err: dErrors.New(dErrors.CodeTransportBlocked, "connection refused")}
	s.relay.resp = &relay.Response{Primary: &models.RawFields{Registrar: "Via Relay Inc"}}

	_, err := s.svc.Lookup(context.Background(), "first.com")
	s.Require().NoError(err)
	s.Equal(int64(1), s.rdap.calls.Load())
	s.Equal(policy.Blocked, s.tracker.Classify("https://rdap.example-registry.test"))

	// A different domain under the same origin goes straight to relay.
	_, err = s.svc.Lookup(context.Background(), "second.com")
	s.Require().NoError(err)
	s.Equal(int64(1), s.rdap.calls.Load(), "learned block must skip the direct tier")
}

func (s *ServiceSuite) TestServerErrorDoesNotPoisonPolicy() {
	s.rdap.replies["flaky.com"] = rdapReply{err: dErrors.New(dErrors.CodeServerError, "502")}
	s.relay.resp = &relay.Response{Primary: &models.RawFields{Registrar: "Via Relay Inc"}}

	_, err := s.svc.Lookup(context.Background(), "flaky.com")
	s.Require().NoError(err)
	s.Equal(policy.Unknown, s.tracker.Classify("https://rdap.example-registry.test"),
		"an HTTP error means the origin was reachable")
}

func (s *ServiceSuite) TestRelayAvailableFlag() {
	s.rdap.replies["maybe.com"] = rdapReply{err: dErrors.New(dErrors.CodeServerError, "503")}
	isAvailable := true
	s.relay.resp = &relay.Response{IsAvailable: &isAvailable}

	result, err := s.svc.Lookup(context.Background(), "maybe.com")
	s.Require().NoError(err)
	s.Equal(models.VerdictAvailable, result.Verdict)
}

func (s *ServiceSuite) TestAllTiersFailedSurfacesSpecificError() {
	s.rdap.replies["down.com"] = rdapReply{err: dErrors.New(dErrors.CodeTimeout, "budget exceeded")}
	s.relay.resp = &relay.Response{Error: "registry unreachable"}

	_, err := s.svc.Lookup(context.Background(), "down.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout),
		"the direct tier's typed failure is the most specific: %v", err)
}

func (s *ServiceSuite) TestUnresolvedSuffixGoesStraightToRelay() {
	s.relay.resp = &relay.Response{Primary: &models.RawFields{Registrar: "Via Relay Inc"}}

	result, err := s.svc.Lookup(context.Background(), "strange.zz")
	s.Require().NoError(err)
	s.Equal(models.VerdictRegistered, result.Verdict)
	s.Zero(s.rdap.calls.Load())
	s.Zero(s.whois.calls.Load())
}

func (s *ServiceSuite) TestWhoisOnlySuffix() {
	s.whois.reply = "Domain: beispiel.de\nStatus: connect\nNserver: ns1.beispiel.de\n"

	result, err := s.svc.Lookup(context.Background(), "beispiel.de")
	s.Require().NoError(err)
	s.Equal(models.VerdictRegistered, result.Verdict)
	s.Equal(models.SourceWhois, result.Record.Source)
	s.Equal(int64(1), s.whois.calls.Load())
}

func (s *ServiceSuite) TestFreshCacheHitSkipsNetwork() {
	_, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.Equal(int64(1), s.rdap.calls.Load())

	s.advance(5 * time.Minute)
	result, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.Require().NotNil(result.CachedAt)
	s.Equal(int64(1), s.rdap.calls.Load(), "a fresh hit must not touch the network")
}

func (s *ServiceSuite) TestStaleCacheServesImmediatelyAndRevalidatesOnce() {
	_, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.Equal(int64(1), s.rdap.calls.Load())

	s.advance(11 * time.Minute)
	result, err := s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.NotNil(result.Record, "stale entries still serve reads")

	s.Eventually(func() bool { return s.rdap.calls.Load() == 2 },
		time.Second, 5*time.Millisecond, "staleness triggers exactly one revalidation")

	s.advance(time.Minute)
	_, err = s.svc.Lookup(context.Background(), "example.com")
	s.Require().NoError(err)
	s.Equal(int64(2), s.rdap.calls.Load(), "the refreshed entry is fresh again")
}

func (s *ServiceSuite) TestConcurrentLookupsShareOneFlight() {
	s.rdap.delay = 50 * time.Millisecond

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Lookup(context.Background(), "example.com")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		s.Require().NoError(err, "worker %d", i)
	}
	s.Equal(int64(1), s.rdap.calls.Load(), "concurrent lookups must collapse into one network sequence")
}

func (s *ServiceSuite) TestFailedLookupIsNotCached() {
	s.rdap.replies["down.com"] = rdapReply{err: dErrors.New(dErrors.CodeServerError, "502")}
	s.relay.err = dErrors.New(dErrors.CodeRelayError, "relay exploded")

	_, err := s.svc.Lookup(context.Background(), "down.com")
	s.Require().Error(err)

	_, cacheErr := s.cache.Get(context.Background(), "down.com")
	s.Require().ErrorIs(cacheErr, sentinel.ErrNotFound)
}

func (s *ServiceSuite) TestNormalizeDomain() {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Example.COM", "example.com", true},
		{"  https://www.example.com/path?q=1  ", "example.com", true},
		{"example.com.", "example.com", true},
		{"not a domain", "", false},
		{"nodots", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		s.Run(tc.in, func() {
			got, err := NormalizeDomain(tc.in)
			if !tc.ok {
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}
}

func (s *ServiceSuite) TestCountryPricingDeferral() {
	svc, err := New(s.registry, s.tracker, s.rdap, s.whois, s.relay, s.cache,
		WithCountryPricingDeferral(true),
	)
	s.Require().NoError(err)
	s.whois.reply = "Domain: beispiel.de\nStatus: connect\n"

	result, lookupErr := svc.Lookup(context.Background(), "beispiel.de")
	s.Require().NoError(lookupErr)
	s.Nil(result.Pricing, "two-letter suffixes defer pricing")
	_, pricing := s.relay.counts()
	s.Zero(pricing)

	// The dedicated pricing call fills the gap afterwards.
	p, pErr := svc.Pricing(context.Background(), "beispiel.de")
	s.Require().NoError(pErr)
	s.InDelta(9.99, p.RegisterPrice, 0.001)

	cached, cacheErr := s.cache.Get(context.Background(), "beispiel.de")
	s.Require().NoError(cacheErr)
	s.NotNil(cached.Pricing, "fetched pricing folds back into the cache entry")
}
