package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"msgbarrier/internal/barrier/handler"
	"msgbarrier/internal/platform/metrics"
	"msgbarrier/pkg/platform/httputil"
	"msgbarrier/pkg/platform/middleware/auth"
	"msgbarrier/pkg/platform/middleware/metadata"
	"msgbarrier/pkg/platform/middleware/request"
	"msgbarrier/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// newRouter exposes /health and /metrics openly and the admin API behind
// bearer authentication.
func newRouter(h *handler.Handler, validator auth.JWTValidator, reg *prometheus.Registry, health func(context.Context) error, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := health(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(reg))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, logger))
		h.RegisterAdmin(r)
	})
	return r
}
