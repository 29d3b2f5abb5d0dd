package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/migrate"
	"github.com/ignite/newsletter/internal/pkg/distlock"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error("migrate failed", "error", err)
		logger.Default().Sync()
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	dir := flagSet.String("dir", "migrations", "directory holding *.sql migration files")
	listOnly := flagSet.Bool("list", false, "list tables in the public schema and exit")
	lockTTL := flagSet.Duration("lock-ttl", 5*time.Minute, "TTL of the redis migration lock")
	createDB := flagSet.Bool("create-db", false, "create database.database_name first if it does not exist")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	if *createDB {
		if err := createDatabase(ctx, cfg.Database); err != nil {
			return err
		}
	}

	db, err := sql.Open("postgres", cfg.Database.DSN().Expose())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	logger.Info("connected to database")

	if *listOnly {
		tables, err := migrate.ListTables(ctx, db)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Println(" ", t)
		}
		fmt.Printf("Total: %d tables\n", len(tables))
		return nil
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	lock := distlock.NewLock(redisClient, db, "newsletter-migrations", *lockTTL)
	return distlock.WithLock(ctx, lock, func(ctx context.Context) error {
		res, err := migrate.Apply(ctx, db, os.DirFS(*dir))
		logger.Info("migrations complete", "applied", len(res.Applied), "failed", len(res.Failed))
		return err
	})
}

// createDatabase connects to the server without selecting a database and
// creates the configured one when missing. It needs the individual
// connection fields; database.url is not parsed.
func createDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	admin, err := sql.Open("postgres", cfg.DSNWithoutDB().Expose())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer admin.Close()

	created, err := migrate.EnsureDatabase(ctx, admin, cfg.DatabaseName)
	if err != nil {
		return err
	}
	if !created {
		logger.Info("database already exists", "database", cfg.DatabaseName)
	}
	return nil
}
