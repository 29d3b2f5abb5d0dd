package config

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/secret"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	EmailClient EmailClientConfig `yaml:"email_client"`
	Redis       RedisConfig       `yaml:"redis"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-For
	// and X-Real-IP headers are believed. Empty means none are.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP becomes a
// single-address prefix.
func (c ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if p, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %q is neither an IP nor a CIDR", raw)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// GetHost returns the server host, with environment override
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Address returns host:port for the HTTP listener.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.GetHost(), strconv.Itoa(c.Port))
}

// DatabaseConfig holds PostgreSQL connection settings.
// URL, when set, takes precedence over the individual fields.
type DatabaseConfig struct {
	URL                   secret.String `yaml:"url"`
	Host                  string        `yaml:"host"`
	Port                  int           `yaml:"port"`
	Username              string        `yaml:"username"`
	Password              secret.String `yaml:"password"`
	DatabaseName          string        `yaml:"database_name"`
	RequireSSL            bool          `yaml:"require_ssl"`
	ConnectTimeoutSeconds int           `yaml:"connect_timeout_seconds"`
	StatementTimeoutMs    int           `yaml:"statement_timeout_ms"`
	MaxOpenConns          int           `yaml:"max_open_conns"`
	MaxIdleConns          int           `yaml:"max_idle_conns"`
}

// DSNWithoutDB returns a connection string for the server without selecting
// a database. cmd/migrate --create-db uses it to create the database itself.
func (c DatabaseConfig) DSNWithoutDB() secret.String {
	return secret.New(c.dsn("").String())
}

// DSN returns the connection string for the application database.
func (c DatabaseConfig) DSN() secret.String {
	if !c.URL.IsEmpty() {
		return c.URL
	}
	return secret.New(c.dsn(c.DatabaseName).String())
}

func (c DatabaseConfig) dsn(dbName string) *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password.Expose()),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}
	if dbName != "" {
		u.Path = "/" + dbName
	}

	q := url.Values{}
	if c.RequireSSL {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	if c.ConnectTimeoutSeconds > 0 {
		q.Set("connect_timeout", strconv.Itoa(c.ConnectTimeoutSeconds))
	}
	if c.StatementTimeoutMs > 0 {
		q.Set("options", fmt.Sprintf("-c statement_timeout=%d", c.StatementTimeoutMs))
	}
	u.RawQuery = q.Encode()
	return u
}

// EmailClientConfig holds the transactional email provider settings
type EmailClientConfig struct {
	BaseURL             string        `yaml:"base_url"`
	SenderEmail         string        `yaml:"sender_email"`
	APIKey              secret.String `yaml:"api_key"`
	TimeoutMilliseconds int           `yaml:"timeout_milliseconds"`
}

// Sender parses the configured sender address.
func (c EmailClientConfig) Sender() (domain.SubscriberEmail, error) {
	return domain.ParseSubscriberEmail(c.SenderEmail)
}

// Timeout returns the configured timeout as a duration
func (c EmailClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMilliseconds) * time.Millisecond
}

// RedisConfig holds Redis connection settings. An empty URL disables every
// redis-backed feature.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// Enabled reports whether a redis URL is configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// RateLimitConfig controls per-client throttling of the intake endpoint.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// ShouldRedactPII defaults to true when unset.
func (c LogConfig) ShouldRedactPII() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.setDefaults()
	if _, err := cfg.Server.TrustedProxyPrefixes(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.ConnectTimeoutSeconds == 0 {
		cfg.Database.ConnectTimeoutSeconds = 2
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.EmailClient.TimeoutMilliseconds == 0 {
		cfg.EmailClient.TimeoutMilliseconds = 10000
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = secret.New(dbURL)
	}
	if apiKey := os.Getenv("EMAIL_API_KEY"); apiKey != "" {
		cfg.EmailClient.APIKey = secret.New(apiKey)
	}
	if baseURL := os.Getenv("EMAIL_BASE_URL"); baseURL != "" {
		cfg.EmailClient.BaseURL = baseURL
	}
	if sender := os.Getenv("EMAIL_SENDER"); sender != "" {
		cfg.EmailClient.SenderEmail = sender
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	return nil
}
