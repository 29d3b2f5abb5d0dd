package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/ratelimit"
	"github.com/ignite/newsletter/internal/service/sending"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// Dependencies are the process-scoped resources shared by every handler.
// Redis, RateLimiter, Metrics and Gatherer may be nil.
type Dependencies struct {
	DB            *sql.DB
	Redis         *redis.Client
	Subscriptions *subscription.Service
	Dispatcher    sending.Dispatcher // held for callers; intake does not send
	RateLimiter   *ratelimit.Limiter
	Metrics       *metrics.Recorder
	Gatherer      prometheus.Gatherer
}

// Server represents the API server
type Server struct {
	config     config.ServerConfig
	handler    http.Handler
	server     *http.Server
	dispatcher sending.Dispatcher
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	return &Server{
		config:     cfg,
		handler:    SetupRoutes(cfg, deps),
		dispatcher: deps.Dispatcher,
	}
}

// Dispatcher returns the transactional email sender held by the server.
func (s *Server) Dispatcher() sending.Dispatcher {
	return s.dispatcher
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
