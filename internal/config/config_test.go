package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "hybrid" },
			wantErr: "unknown mode",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "unknown log_level",
		},
		{
			name: "missing postgres host without dsn",
			mutate: func(c *Config) {
				c.Postgres.DSN = ""
				c.Postgres.Host = ""
			},
			wantErr: "host or dsn",
		},
		{
			name: "dsn makes host optional",
			mutate: func(c *Config) {
				c.Postgres.DSN = "postgres://u:p@db:5432/f1"
				c.Postgres.Host = ""
				c.Postgres.Database = ""
				c.Postgres.User = ""
			},
		},
		{
			name:    "pool bounds inverted",
			mutate:  func(c *Config) { c.Postgres.PoolMinConns = 50 },
			wantErr: "pool_min_conns",
		},
		{
			name:    "missing redis addr",
			mutate:  func(c *Config) { c.Redis.Addr = "" },
			wantErr: "redis",
		},
		{
			name: "s3 enabled without bucket",
			mutate: func(c *Config) {
				c.S3.Enabled = true
				c.S3.Bucket = ""
			},
			wantErr: "bucket",
		},
		{
			name:    "non-positive workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name: "disabled server ignores the port",
			mutate: func(c *Config) {
				c.Server.Enabled = false
				c.Server.Port = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Redis.Addr = ""
	cfg.Pipeline.Workers = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want combined error")
	}
	for _, frag := range []string{"unknown mode", "redis", "workers"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("Validate() error %q missing %q", err, frag)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "watch"
log_level = "debug"

[postgres]
host = "db.internal"
database = "f1"

[pipeline]
workers = 4
run_timeout = "5m"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "watch" || cfg.LogLevel != "debug" {
		t.Errorf("mode/log_level = %s/%s, want watch/debug", cfg.Mode, cfg.LogLevel)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("postgres host = %q, want db.internal", cfg.Postgres.Host)
	}
	// Unset file fields keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("postgres port = %d, want default 5432", cfg.Postgres.Port)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.RunTimeout.Duration != 5*time.Minute {
		t.Errorf("run_timeout = %v, want 5m", cfg.Pipeline.RunTimeout.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config failed validation: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`mode = "serve"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("F1_MODE", "full")
	t.Setenv("F1_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("F1_PIPELINE_RUN_TIMEOUT", "30s")
	t.Setenv("F1_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "full" {
		t.Errorf("mode = %q, want env override full", cfg.Mode)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
	if cfg.Pipeline.RunTimeout.Duration != 30*time.Second {
		t.Errorf("run_timeout = %v, want 30s", cfg.Pipeline.RunTimeout.Duration)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("cors origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}
