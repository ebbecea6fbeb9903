package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupsTotal         *prometheus.CounterVec
	LookupDurationMs     prometheus.Histogram
	CacheHitsTotal       *prometheus.CounterVec
	RelayFallbacksTotal  *prometheus.CounterVec
	OriginsBlockedTotal  prometheus.Counter
	RevalidationsTotal   *prometheus.CounterVec
	InFlightLookups      prometheus.Gauge
	PricingFetchesTotal  *prometheus.CounterVec
	PricingDeferredTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		LookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainlens_lookups_total",
			Help: "Total lookups by terminal outcome and serving source",
		}, []string{"outcome", "source"}),
		LookupDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "domainlens_lookup_duration_ms",
			Help:    "End-to-end lookup latency in milliseconds",
			Buckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		CacheHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainlens_cache_hits_total",
			Help: "Cache hits by freshness",
		}, []string{"freshness"}),
		RelayFallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainlens_relay_fallbacks_total",
			Help: "Lookups that fell through to the relay tier, by trigger",
		}, []string{"reason"}),
		OriginsBlockedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domainlens_origins_blocked_total",
			Help: "Transport policy transitions to the blocked state",
		}),
		RevalidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainlens_cache_revalidations_total",
			Help: "Background stale-entry revalidations by result",
		}, []string{"result"}),
		InFlightLookups: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "domainlens_lookups_in_flight",
			Help: "Lookups currently resolving",
		}),
		PricingFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainlens_pricing_fetches_total",
			Help: "Relay pricing fetches by result",
		}, []string{"result"}),
		PricingDeferredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domainlens_pricing_deferred_total",
			Help: "Lookups whose pricing was deferred by suffix policy",
		}),
	}
}

func (m *Metrics) ObserveLookup(outcome, source string, durationMs float64) {
	m.LookupsTotal.WithLabelValues(outcome, source).Inc()
	m.LookupDurationMs.Observe(durationMs)
}

func (m *Metrics) IncrementCacheHit(fresh bool) {
	if fresh {
		m.CacheHitsTotal.WithLabelValues("fresh").Inc()
		return
	}
	m.CacheHitsTotal.WithLabelValues("stale").Inc()
}

func (m *Metrics) IncrementRelayFallback(reason string) {
	m.RelayFallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementOriginBlocked() {
	m.OriginsBlockedTotal.Inc()
}

func (m *Metrics) IncrementRevalidation(result string) {
	m.RevalidationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementPricingFetch(result string) {
	m.PricingFetchesTotal.WithLabelValues(result).Inc()
}
