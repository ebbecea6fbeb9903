// Package handler exposes the lookup service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"domainlens/internal/lookup/models"
	"domainlens/pkg/platform/httputil"
	"domainlens/pkg/requestcontext"
)

// Service defines the lookup operations the handler exposes.
type Service interface {
	Lookup(ctx context.Context, domain string) (*models.Result, error)
	Pricing(ctx context.Context, domain string) (*models.Pricing, error)
}

// Handler wires lookup endpoints to the lookup service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a lookup handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts lookup endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domain/{domain}", h.HandleLookup)
	r.Get("/domain/{domain}/pricing", h.HandlePricing)
}

// HandleLookup handles GET /domain/{domain} requests.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")
	start := time.Now()

	result, err := h.service.Lookup(ctx, domain)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup failed",
			"request_id", requestcontext.GetRequestID(ctx),
			"domain", domain,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "lookup served",
		"request_id", requestcontext.GetRequestID(ctx),
		"domain", domain,
		"verdict", result.Verdict,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandlePricing handles GET /domain/{domain}/pricing requests.
func (h *Handler) HandlePricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")

	pricing, err := h.service.Pricing(ctx, domain)
	if err != nil {
		h.logger.ErrorContext(ctx, "pricing fetch failed",
			"request_id", requestcontext.GetRequestID(ctx),
			"domain", domain,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pricing)
}
