package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"domainlens/internal/lookup/handler"
	"domainlens/internal/lookup/metrics"
	"domainlens/internal/lookup/ports"
	"domainlens/internal/lookup/service"
	"domainlens/internal/lookup/store"
	"domainlens/internal/platform/config"
	"domainlens/internal/platform/httpserver"
	"domainlens/internal/platform/logger"
	platformredis "domainlens/internal/platform/redis"
	"domainlens/internal/policy"
	"domainlens/internal/rdap"
	"domainlens/internal/relay"
	"domainlens/internal/suffix"
	"domainlens/internal/whois"
	auditpublisher "domainlens/pkg/platform/audit/publisher"
	auditkafka "domainlens/pkg/platform/audit/publishers/kafka"
	auditmemory "domainlens/pkg/platform/audit/store/memory"
	"domainlens/pkg/requestcontext"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Resolution logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	registryOpts := []suffix.Option{suffix.WithLogger(log), suffix.WithFeedTTL(cfg.BootstrapTTL)}
	if redisClient != nil {
		registryOpts = append(registryOpts, suffix.WithDirectory(suffix.NewRedisDirectory(redisClient.Client)))
	}
	registry := suffix.NewRegistry(cfg.BootstrapURL, cfg.BootstrapTimeout, registryOpts...)

	tracker := policy.NewTracker(policy.WithLogger(log))
	rdapClient := rdap.New(rdap.WithLogger(log))
	whoisClient := whois.New(cfg.WhoisTimeout, whois.WithLogger(log))
	relayClient := relay.New(cfg.RelayURL, cfg.RelaySigningKey, cfg.RelayTimeout, relay.WithLogger(log))

	var cache ports.CacheStore
	if redisClient != nil {
		cache = store.NewRedisStore(redisClient.Client, cfg.CacheRetention)
	} else {
		cache = store.NewInMemoryStore(cfg.CacheRetention)
	}

	var sink auditpublisher.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	} else {
		sink = auditmemory.NewStore()
	}
	publisher := auditpublisher.NewAsync(sink, auditpublisher.WithLogger(log))
	defer publisher.Close()

	lookupMetrics := metrics.New()
	svc, err := service.New(registry, tracker, rdapClient, whoisClient, relayClient, cache,
		service.WithLogger(log),
		service.WithMetrics(lookupMetrics),
		service.WithAudit(publisher),
		service.WithCacheTTL(cfg.CacheTTL),
		service.WithBudgets(cfg.DirectTimeoutAllowed, cfg.DirectTimeoutUnknown),
		service.WithCountryPricingDeferral(cfg.DeferPricingForCountryTLDs),
	)
	if err != nil {
		log.Error("lookup service init failed", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(requestcontext.Middleware)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", func(r chi.Router) {
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting domainlens", "addr", cfg.Addr, "redis", redisClient != nil, "kafka", len(cfg.KafkaBrokers) > 0)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
