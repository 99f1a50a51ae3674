// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ServiceURL is the base URL of the Interview Service.
	ServiceURL string `koanf:"service_url"`

	// ServiceToken is sent as a bearer token on every remote call.
	ServiceToken string `koanf:"service_token"`

	// ServiceTimeoutMS bounds each remote call.
	ServiceTimeoutMS int `koanf:"service_timeout_ms"`

	// PageLimit is the default page size of the bid lists.
	PageLimit int `koanf:"page_limit"`

	// JWTSecret enables bearer token auth on the API. Empty trusts X-User-ID.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionBackend is memory or redis.
	SessionBackend string `koanf:"session_backend"`
	RedisAddr      string `koanf:"redis_addr"`

	// SessionTTLS expires idle sessions.
	SessionTTLS int `koanf:"session_ttl_s"`

	// JournalDSN selects the PostgreSQL journal. Empty keeps it in memory.
	JournalDSN string `koanf:"journal_dsn"`

	// JournalQueueSize bounds the in-memory journal queue.
	JournalQueueSize int `koanf:"journal_queue_size"`

	// JournalWorkers sets the number of journal writers.
	JournalWorkers int `koanf:"journal_workers"`

	// Metrics naming and latency buckets. Empty buckets keep the built-in set.
	MetricsNamespace string    `koanf:"metrics_namespace"`
	MetricsSubsystem string    `koanf:"metrics_subsystem"`
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		ServiceURL:       "http://localhost:8080",
		ServiceTimeoutMS: 15_000,
		PageLimit:        20,
		SessionBackend:   BackendMemory,
		RedisAddr:        "localhost:6379",
		SessionTTLS:      3600,
		JournalQueueSize: 4096,
		JournalWorkers:   runtime.NumCPU(),
		MetricsNamespace: "intervue",
		MetricsSubsystem: "engine",
	}
}

// ServiceTimeout returns ServiceTimeoutMS as a duration.
func (c *Config) ServiceTimeout() time.Duration {
	return time.Duration(c.ServiceTimeoutMS) * time.Millisecond
}

// SessionTTL returns SessionTTLS as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLS) * time.Second
}

// Backend returns the session backend in canonical form.
func (c *Config) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.SessionBackend))
}

// Normalize puts case-insensitive settings into canonical form.
func (c *Config) Normalize() {
	c.SessionBackend = c.Backend()
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ServiceURL) == "":
		return fmt.Errorf("%w: service_url must not be empty", ErrInvalidConfig)
	case c.ServiceTimeoutMS <= 0:
		return fmt.Errorf("%w: service_timeout_ms must be positive", ErrInvalidConfig)
	case c.PageLimit <= 0:
		return fmt.Errorf("%w: page_limit must be positive", ErrInvalidConfig)
	case c.SessionTTLS < 0:
		return fmt.Errorf("%w: session_ttl_s must not be negative", ErrInvalidConfig)
	case c.JournalQueueSize <= 0:
		return fmt.Errorf("%w: journal_queue_size must be positive", ErrInvalidConfig)
	case c.JournalWorkers <= 0:
		return fmt.Errorf("%w: journal_workers must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	if !metricName.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	if !slices.IsSorted(c.MetricsBucketsMS) || len(slices.Compact(slices.Clone(c.MetricsBucketsMS))) != len(c.MetricsBucketsMS) {
		return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
	}
	switch c.Backend() {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: session_backend must be memory or redis", ErrInvalidConfig)
	}
	return nil
}
