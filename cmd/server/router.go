package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	directivehandler "xcmkit/internal/directive/handler"
	"xcmkit/internal/platform/kafka"
	platformmetrics "xcmkit/internal/platform/metrics"
	ratemw "xcmkit/internal/ratelimit/middleware"
	ratemodels "xcmkit/internal/ratelimit/models"
	registryhandler "xcmkit/internal/registry/handler"
	audit "xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/httputil"
	"xcmkit/pkg/platform/middleware/admin"
	"xcmkit/pkg/platform/middleware/request"
)

// healthCheck reports whether one backing dependency is reachable.
type healthCheck func(ctx context.Context) error

type routerDeps struct {
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	httpMetrics *platformmetrics.Metrics
	directives  directivehandler.Service
	registry    registryhandler.Registry
	auditor     audit.Emitter
	limiter     *ratemw.Middleware
	proxies     *request.TrustedProxies
	adminSecret []byte
	checks      map[string]healthCheck
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata(d.proxies))
	r.Use(request.Time)
	r.Use(request.Logger(d.logger))
	r.Use(request.Recover(d.logger))
	r.Use(d.httpMetrics.Middleware)

	r.Get("/healthz", healthHandler(d.checks))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	limit := func(ratemodels.Class) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler { return next }
	}
	if d.limiter != nil {
		limit = d.limiter.Limit
	}

	r.Group(func(r chi.Router) {
		r.Use(limit(ratemodels.ClassDirective))
		directivehandler.New(d.directives, d.logger).Register(r)
	})

	reg := registryhandler.New(d.registry, d.auditor, d.logger)
	r.Group(func(r chi.Router) {
		r.Use(limit(ratemodels.ClassRegistry))
		reg.Register(r)
	})
	if len(d.adminSecret) == 0 {
		d.logger.Warn("admin endpoints disabled: no admin JWT secret configured")
		return r
	}
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminJWT(d.adminSecret, d.logger, d.auditor))
		reg.RegisterAdmin(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

// Router assembles the HTTP surface over the app's dependencies.
func (a *app) Router() http.Handler {
	return newRouter(routerDeps{
		logger:      a.logger,
		gatherer:    a.promRegistry,
		httpMetrics: a.httpMetrics,
		directives:  a.service,
		registry:    a.registry,
		auditor:     a.publisher,
		limiter:     a.limiter,
		proxies:     a.proxies,
		adminSecret: []byte(a.cfg.Server.AdminJWTSecret),
		checks:      a.healthChecks(),
	})
}

func (a *app) healthChecks() map[string]healthCheck {
	checks := make(map[string]healthCheck)
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.kafka != nil {
		checks["kafka"] = func(ctx context.Context) error { return kafka.Health(ctx, a.kafka) }
	}
	return checks
}
