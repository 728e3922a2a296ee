// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scp-gateway/internal/platform/metrics"
	"scp-gateway/internal/platform/middleware"
	"scp-gateway/pkg/platform/httputil"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries what the router needs beyond the route groups.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	Discovery      Discovery

	// ReadinessChecks are probed by /health/ready, keyed by dependency name.
	ReadinessChecks map[string]ReadinessCheck
}

// ReadinessCheck returns nil while the dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// NewRouter wires the middleware chain, ops endpoints and every route group.
func NewRouter(cfg RouterConfig, groups ...Registrar) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(timeout))
	if cfg.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", readiness(cfg.ReadinessChecks, logger))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/.well-known/scp-configuration", cfg.Discovery.handle)

	for _, g := range groups {
		g.Register(r)
	}
	return r
}

func readiness(checks map[string]ReadinessCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
				deps[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		body := map[string]any{"status": "ready", "dependencies": deps}
		if status != http.StatusOK {
			body["status"] = "not_ready"
		}
		httputil.WriteJSON(w, status, body)
	}
}

const readinessTimeout = 2 * time.Second
