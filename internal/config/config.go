package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	API   APIConfig
	Cache CacheConfig
	Query QueryConfig
	State StateConfig
}

type APIConfig struct {
	// BaseURL is the gateway address including the version prefix. A
	// reverse proxy in front of the microservices routes by path, so one
	// base URL reaches every backend.
	BaseURL string `env:"API_BASE_URL, default=http://localhost:8080/api/v1"`

	TimeoutSeconds int `env:"API_TIMEOUT_SECS, default=10"`

	OutgoingHTTPMaxIdleConns    int `env:"API_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"API_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// CacheConfig controls the client-side resource cache.
type CacheConfig struct {
	// RetentionSeconds is how long the last-known value of a key with no
	// subscribers is kept before it is garbage collected.
	RetentionSeconds int `env:"CACHE_RETENTION_SECS, default=300"`

	// MaxEntries bounds the retention store.
	MaxEntries int `env:"CACHE_MAX_ENTRIES, default=10000"`
}

// QueryConfig holds the defaults applied to query subscriptions that don't
// override them per key.
type QueryConfig struct {
	// DedupeWindowMillis: repeat requests for the same key inside this
	// window are served from cache instead of hitting the gateway.
	DedupeWindowMillis int `env:"QUERY_DEDUPE_WINDOW_MS, default=2000"`

	// BadgeIntervalSeconds is the polling interval for the cart and
	// notification count badges in watch mode.
	BadgeIntervalSeconds int `env:"QUERY_BADGE_INTERVAL_SECS, default=30"`

	// ErrorRetryCount is the number of automatic retries after a failed
	// fetch.
	ErrorRetryCount int `env:"QUERY_ERROR_RETRY_COUNT, default=2"`
}

// StateConfig locates the persisted session state shared by every running
// client process.
type StateConfig struct {
	// Dir is the state directory. Empty resolves to a per-user default at
	// startup.
	Dir string `env:"STATE_DIR"`

	// WatchIntervalMillis is how often the state directory is polled for
	// changes made by other processes.
	WatchIntervalMillis int `env:"STATE_WATCH_INTERVAL_MS, default=1000"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.API.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid API configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the API configuration is usable.
func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be http or https, got %q", c.BaseURL)
	}

	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT_SECS must be positive")
	}

	return nil
}

// Timeout returns the configured request timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DedupeWindow returns the configured dedupe window as a duration.
func (c *QueryConfig) DedupeWindow() time.Duration {
	return time.Duration(c.DedupeWindowMillis) * time.Millisecond
}

// BadgeInterval returns the configured badge polling interval as a duration.
func (c *QueryConfig) BadgeInterval() time.Duration {
	return time.Duration(c.BadgeIntervalSeconds) * time.Second
}

// Retention returns the configured retention window as a duration.
func (c *CacheConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// WatchInterval returns the configured state poll interval as a duration.
func (c *StateConfig) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalMillis) * time.Millisecond
}
