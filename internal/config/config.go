// Package config defines the top-level configuration for the fantasy
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by F1_* environment variables.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the race
// archive. Disabled skips cold-storage export entirely.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// PipelineConfig holds race-completion pipeline parameters.
type PipelineConfig struct {
	Workers       int      `toml:"workers"`
	RunTimeout    duration `toml:"run_timeout"`
	PriceCacheTTL duration `toml:"price_cache_ttl"`
	RunLock       bool     `toml:"run_lock"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "f1fantasy",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "f1-fantasy-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Pipeline: PipelineConfig{
			Workers:       8,
			RunTimeout:    duration{10 * time.Minute},
			PriceCacheTTL: duration{24 * time.Hour},
			RunLock:       true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode: "full" runs the
// watcher and the HTTP server, "watch" only the watcher, "serve" only the
// HTTP server.
var validModes = map[string]bool{
	"full":  true,
	"watch": true,
	"serve": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: full, watch, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Postgres.DSN == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host or dsn must be set")
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must be set")
		}
		if c.Postgres.User == "" {
			errs = append(errs, "postgres: user must be set")
		}
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns exceeds pool_max_conns")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must be set")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must be set when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must be set when enabled")
		}
	}

	if c.Pipeline.Workers <= 0 {
		errs = append(errs, "pipeline: workers must be positive")
	}
	if c.Pipeline.RunTimeout.Duration < 0 {
		errs = append(errs, "pipeline: run_timeout must not be negative")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
