package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Durations are fields rather
// than constants so tests can shrink freshness windows and budgets.
type Config struct {
	Addr string

	Redis RedisConfig

	// BootstrapURL points at the IANA-style RDAP bootstrap document.
	BootstrapURL string
	// BootstrapTTL bounds how long a fetched bootstrap feed stays fresh.
	BootstrapTTL time.Duration
	// BootstrapTimeout bounds the feed fetch itself.
	BootstrapTimeout time.Duration

	// RelayURL is the trusted relay endpoint for blocked/unsupported registries.
	RelayURL string
	// RelaySigningKey signs the short-lived service token each relay call carries.
	RelaySigningKey string
	RelayTimeout    time.Duration

	// Direct-query budgets, tiered by transport policy classification.
	DirectTimeoutAllowed time.Duration
	DirectTimeoutUnknown time.Duration
	WhoisTimeout         time.Duration

	// CacheTTL is the freshness window for resolved records; stale entries are
	// still served while a background revalidation runs.
	CacheTTL time.Duration
	// CacheRetention is the hard retention window in the backing store.
	CacheRetention time.Duration

	// DeferPricingForCountryTLDs skips the inline pricing fetch for two-letter
	// suffixes. Product heuristic, kept configurable on purpose.
	DeferPricingForCountryTLDs bool

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig tunes the shared Redis client. An empty URL disables Redis and
// the service falls back to in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr: envOr("DOMAINLENS_ADDR", ":8080"),

		Redis: RedisConfig{
			URL:          os.Getenv("DOMAINLENS_REDIS_URL"),
			PoolSize:     envInt("DOMAINLENS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("DOMAINLENS_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("DOMAINLENS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("DOMAINLENS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("DOMAINLENS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},

		BootstrapURL:     envOr("DOMAINLENS_BOOTSTRAP_URL", "https://data.iana.org/rdap/dns.json"),
		BootstrapTTL:     envDuration("DOMAINLENS_BOOTSTRAP_TTL", time.Hour),
		BootstrapTimeout: envDuration("DOMAINLENS_BOOTSTRAP_TIMEOUT", 5*time.Second),

		RelayURL:        os.Getenv("DOMAINLENS_RELAY_URL"),
		RelaySigningKey: os.Getenv("DOMAINLENS_RELAY_SIGNING_KEY"),
		RelayTimeout:    envDuration("DOMAINLENS_RELAY_TIMEOUT", 15*time.Second),

		DirectTimeoutAllowed: envDuration("DOMAINLENS_DIRECT_TIMEOUT_ALLOWED", 6*time.Second),
		DirectTimeoutUnknown: envDuration("DOMAINLENS_DIRECT_TIMEOUT_UNKNOWN", 4*time.Second),
		WhoisTimeout:         envDuration("DOMAINLENS_WHOIS_TIMEOUT", 5*time.Second),

		CacheTTL:       envDuration("DOMAINLENS_CACHE_TTL", 10*time.Minute),
		CacheRetention: envDuration("DOMAINLENS_CACHE_RETENTION", 24*time.Hour),

		DeferPricingForCountryTLDs: envOr("DOMAINLENS_DEFER_CC_PRICING", "true") == "true",

		KafkaBrokers: splitNonEmpty(os.Getenv("DOMAINLENS_KAFKA_BROKERS")),
		KafkaTopic:   envOr("DOMAINLENS_KAFKA_TOPIC", "domainlens.lookups"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
