package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies F1_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known F1_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// Postgres
	setStr(&cfg.Postgres.DSN, "F1_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "F1_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "F1_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "F1_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "F1_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "F1_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "F1_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "F1_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "F1_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "F1_POSTGRES_RUN_MIGRATIONS")

	// Redis
	setStr(&cfg.Redis.Addr, "F1_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "F1_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "F1_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "F1_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "F1_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "F1_REDIS_TLS_ENABLED")

	// S3
	setBool(&cfg.S3.Enabled, "F1_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "F1_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "F1_S3_REGION")
	setStr(&cfg.S3.Bucket, "F1_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "F1_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "F1_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "F1_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "F1_S3_FORCE_PATH_STYLE")

	// Pipeline
	setInt(&cfg.Pipeline.Workers, "F1_PIPELINE_WORKERS")
	setDuration(&cfg.Pipeline.RunTimeout, "F1_PIPELINE_RUN_TIMEOUT")
	setDuration(&cfg.Pipeline.PriceCacheTTL, "F1_PIPELINE_PRICE_CACHE_TTL")
	setBool(&cfg.Pipeline.RunLock, "F1_PIPELINE_RUN_LOCK")

	// Server
	setBool(&cfg.Server.Enabled, "F1_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "F1_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "F1_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "F1_SERVER_API_KEY")

	// Top-level
	setStr(&cfg.Mode, "F1_MODE")
	setStr(&cfg.LogLevel, "F1_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
