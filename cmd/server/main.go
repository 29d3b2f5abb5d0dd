package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/emailclient"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/pkg/ratelimit"
	"github.com/ignite/newsletter/internal/repository/postgres"
	"github.com/ignite/newsletter/internal/service/subscription"
)

func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}

	logger.SetDefault(logger.New(zapcore.AddSync(os.Stdout), logger.ParseLevel(cfg.Log.Level), cfg.Log.ShouldRedactPII()))
	defer logger.Default().Sync()
	// net/http reports accept and TLS errors through the standard log package.
	defer zap.RedirectStdLog(logger.Default().Zap())()

	// The pool connects lazily; a store outage at boot only fails requests.
	db, err := sql.Open("postgres", cfg.Database.DSN().Expose())
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("database not reachable at startup", "error", err)
	} else {
		logger.Info("connected to database")
	}
	pingCancel()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			fatal("invalid redis URL", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	recorder, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		fatal("failed to register metrics", err)
	}

	sender, err := cfg.EmailClient.Sender()
	if err != nil {
		fatal("invalid sender email", err)
	}
	dispatcher := emailclient.NewClient(
		cfg.EmailClient.APIKey,
		sender,
		cfg.EmailClient.BaseURL,
		cfg.EmailClient.Timeout(),
		emailclient.WithObserver(recorder),
	)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled && redisClient != nil {
		limiter = ratelimit.New(redisClient, "subscriptions", cfg.RateLimit.RequestsPerMinute, time.Minute)
		logger.Info("intake rate limit enabled", "requests_per_minute", cfg.RateLimit.RequestsPerMinute)
	}

	server := api.NewServer(cfg.Server, api.Dependencies{
		DB:            db,
		Redis:         redisClient,
		Subscriptions: subscription.NewService(postgres.NewSubscriptionRepo(db)),
		Dispatcher:    dispatcher,
		RateLimiter:   limiter,
		Metrics:       recorder,
		Gatherer:      prometheus.DefaultGatherer,
	})

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Address()
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	logger.Default().Sync()
	os.Exit(1)
}
