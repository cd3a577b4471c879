// Package config loads pipeline configuration from an optional TOML file
// with environment-variable overrides. Every setting has a usable default so
// a worker starts against a local broker with no configuration at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the worker binaries need at startup.
type Config struct {
	NATSURL        string        // EVENTPIPE_NATS_URL
	PaymentBaseURL string        // EVENTPIPE_PAYMENT_BASE_URL
	MaxPending     int           // EVENTPIPE_MAX_PENDING, async publish window
	Retries        int           // EVENTPIPE_RETRIES, transient publish failures
	RetryWait      time.Duration // EVENTPIPE_RETRY_WAIT
	AckWait        time.Duration // EVENTPIPE_ACK_WAIT
	LogLevel       string        // EVENTPIPE_LOG_LEVEL (debug|info|warn|error)
	CacheTTL       time.Duration // EVENTPIPE_CACHE_TTL
}

// fileConfig is the TOML shape. Durations are strings in Go duration syntax
// ("30s", "1h") so files read the same as the environment overrides.
type fileConfig struct {
	NATSURL        string `toml:"nats_url"`
	PaymentBaseURL string `toml:"payment_base_url"`
	MaxPending     int    `toml:"max_pending"`
	Retries        int    `toml:"retries"`
	RetryWait      string `toml:"retry_wait"`
	AckWait        string `toml:"ack_wait"`
	LogLevel       string `toml:"log_level"`
	CacheTTL       string `toml:"cache_ttl"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		NATSURL:        "nats://localhost:4222",
		PaymentBaseURL: "https://pay.example.com",
		MaxPending:     256,
		Retries:        3,
		RetryWait:      100 * time.Millisecond,
		AckWait:        30 * time.Second,
		LogLevel:       "info",
		CacheTTL:       time.Hour,
	}
}

// Load reads path (when non-empty) and applies environment overrides on top.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		} else if err := c.applyFile(fc); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	c.NATSURL = envOrDefault("EVENTPIPE_NATS_URL", c.NATSURL)
	c.PaymentBaseURL = envOrDefault("EVENTPIPE_PAYMENT_BASE_URL", c.PaymentBaseURL)
	c.LogLevel = envOrDefault("EVENTPIPE_LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("EVENTPIPE_MAX_PENDING"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
			return Config{}, fmt.Errorf("EVENTPIPE_MAX_PENDING: %q is not a positive integer", v)
		}
		c.MaxPending = n
	}
	if v := os.Getenv("EVENTPIPE_RETRIES"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 0 {
			return Config{}, fmt.Errorf("EVENTPIPE_RETRIES: %q is not a non-negative integer", v)
		}
		c.Retries = n
	}
	if v := os.Getenv("EVENTPIPE_RETRY_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("EVENTPIPE_RETRY_WAIT: %w", err)
		}
		c.RetryWait = d
	}
	if v := os.Getenv("EVENTPIPE_ACK_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("EVENTPIPE_ACK_WAIT: %w", err)
		}
		c.AckWait = d
	}
	if v := os.Getenv("EVENTPIPE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("EVENTPIPE_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyFile(fc fileConfig) error {
	if fc.NATSURL != "" {
		c.NATSURL = fc.NATSURL
	}
	if fc.PaymentBaseURL != "" {
		c.PaymentBaseURL = fc.PaymentBaseURL
	}
	if fc.MaxPending != 0 {
		c.MaxPending = fc.MaxPending
	}
	if fc.Retries != 0 {
		c.Retries = fc.Retries
	}
	if fc.RetryWait != "" {
		d, err := time.ParseDuration(fc.RetryWait)
		if err != nil {
			return fmt.Errorf("retry_wait: %w", err)
		}
		c.RetryWait = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.AckWait != "" {
		d, err := time.ParseDuration(fc.AckWait)
		if err != nil {
			return fmt.Errorf("ack_wait: %w", err)
		}
		c.AckWait = d
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	return nil
}

// Validate rejects values no worker can run with.
func (c Config) Validate() error {
	switch {
	case c.NATSURL == "":
		return fmt.Errorf("nats_url is required")
	case c.MaxPending <= 0:
		return fmt.Errorf("max_pending must be positive, got %d", c.MaxPending)
	case c.Retries < 0:
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	case c.RetryWait <= 0:
		return fmt.Errorf("retry_wait must be positive, got %s", c.RetryWait)
	case c.AckWait <= 0:
		return fmt.Errorf("ack_wait must be positive, got %s", c.AckWait)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
