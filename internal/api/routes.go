package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// SetupRoutes configures all routes.
func SetupRoutes(cfg config.ServerConfig, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warn("ignoring trusted proxies", "error", err)
		trusted = nil
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(realIP(trusted))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// CORS for the public sign-up form
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	hc := NewHealthChecker(deps.DB, deps.Redis)
	r.Get("/health_check", hc.HandleHealthCheck)
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	sh := NewSubscriptionHandler(deps.Subscriptions, deps.Metrics)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(rateLimit(deps.RateLimiter, deps.Metrics))
		}
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/subscriptions", sh.HandleSubscribe)
	})

	return r
}
