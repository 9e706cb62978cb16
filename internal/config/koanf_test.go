// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/reelrank/internal/dataset"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// isolateEnv clears every allow-listed variable and CONFIG_PATH so host
// settings do not leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	for key := range envMappings {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Data.ItemColumn != "Movie" || cfg.Data.Format != dataset.FormatAuto {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Trainer.Factors != 100 || cfg.Trainer.Epochs != 20 || cfg.Trainer.Seed != 42 {
		t.Errorf("Trainer = %+v", cfg.Trainer)
	}
	if cfg.Trainer.LearningRate != 0.005 || cfg.Trainer.Regularization != 0.02 {
		t.Errorf("Trainer = %+v", cfg.Trainer)
	}
	if cfg.Recommend.UnknownUserPolicy != "permissive" || cfg.Recommend.DefaultK != 1 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if !cfg.Store.Enabled || cfg.Store.GCInterval != 10*time.Minute {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestDefaultConfig_MatchesEngineDefaults keeps the two default sets in step.
func TestDefaultConfig_MatchesEngineDefaults(t *testing.T) {
	t.Parallel()

	got := defaultConfig().EngineConfig()
	if *got != *recommend.DefaultConfig() {
		t.Errorf("EngineConfig() = %+v, want %+v", got, recommend.DefaultConfig())
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"RATINGS_PATH", "data.path"},
		{"RATINGS_ITEM_COLUMN", "data.item_column"},
		{"TRAINER_FACTORS", "trainer.factors"},
		{"trainer_learning_rate", "trainer.learning_rate"},
		{"RECOMMEND_UNKNOWN_USER_POLICY", "recommend.unknown_user_policy"},
		{"RECOMMEND_MAX_RATINGS", "recommend.max_ratings_per_request"},
		{"MODEL_CACHE_TTL", "cache.ttl"},
		{"MODEL_STORE_PATH", "store.path"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},

		// Not on the allow-list
		{"PATH", ""},
		{"HOME", ""},
		{"TRAINER_UNKNOWN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Trainer.Factors != 100 || cfg.Server.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATINGS_PATH", "/srv/ratings.parquet")
	t.Setenv("RATINGS_FORMAT", "parquet")
	t.Setenv("TRAINER_FACTORS", "16")
	t.Setenv("TRAINER_LEARNING_RATE", "0.01")
	t.Setenv("TRAINER_MAX_DURATION", "5s")
	t.Setenv("TRAINER_CLIP_PREDICTIONS", "false")
	t.Setenv("RECOMMEND_UNKNOWN_USER_POLICY", "strict")
	t.Setenv("MODEL_STORE_BREAKER_THRESHOLD", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Data.Path != "/srv/ratings.parquet" || cfg.Data.Format != dataset.FormatParquet {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Trainer.Factors != 16 || cfg.Trainer.LearningRate != 0.01 {
		t.Errorf("Trainer = %+v", cfg.Trainer)
	}
	if cfg.Trainer.MaxDuration != 5*time.Second || cfg.Trainer.ClipPredictions {
		t.Errorf("Trainer = %+v", cfg.Trainer)
	}
	if cfg.EngineConfig().Upsert.UnknownUserPolicy != recommend.UnknownUserStrict {
		t.Errorf("UnknownUserPolicy = %q", cfg.Recommend.UnknownUserPolicy)
	}
	if cfg.BreakerConfig().FailureThreshold != 7 {
		t.Errorf("BreakerConfig().FailureThreshold = %d", cfg.BreakerConfig().FailureThreshold)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.LoggerConfig().Format != "console" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7000
data:
  path: /data/ratings.csv
  item_column: Title
trainer:
  factors: 8
  epochs: 5
  max_duration: 1m
cache:
  max_entries: 4
store:
  in_memory: true
security:
  cors_origins:
    - https://reelrank.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Environment wins over the file.
	t.Setenv("TRAINER_EPOCHS", "9")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Data.ItemColumn != "Title" || cfg.Data.UserColumn != "User" {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Trainer.Factors != 8 || cfg.Trainer.Epochs != 9 || cfg.Trainer.MaxDuration != time.Minute {
		t.Errorf("Trainer = %+v", cfg.Trainer)
	}
	if cfg.Cache.MaxEntries != 4 || !cfg.Cache.Enabled {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if sc := cfg.StorageConfig(); !sc.InMemory || sc.GCRatio != 0.5 {
		t.Errorf("StorageConfig() = %+v", sc)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://reelrank.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_InvalidFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadWithKoanf_ValidationError(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TRAINER_FACTORS", "0")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "trainer.factors must be positive, got 0") {
		t.Errorf("error = %v", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	isolateEnv(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want none", got)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("missing CONFIG_PATH should be ignored, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "server.request_timeout"},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, "server.environment"},
		{"bad format", func(c *Config) { c.Data.Format = "xlsx" }, "data.format"},
		{"empty column", func(c *Config) { c.Data.RatingColumn = "" }, "column names"},
		{"bad epochs", func(c *Config) { c.Trainer.Epochs = 0 }, "trainer.epochs"},
		{"inverted scale", func(c *Config) { c.Trainer.RatingMin = 5; c.Trainer.RatingMax = 1 }, "trainer.rating_max"},
		{"bad policy", func(c *Config) { c.Recommend.UnknownUserPolicy = "lenient" }, "unknown_user_policy"},
		{"max below default", func(c *Config) { c.Recommend.MaxK = 0 }, "max_k"},
		{"store without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"store disabled skips checks", func(c *Config) { c.Store.Enabled = false; c.Store.Path = "" }, ""},
		{"bad gc interval", func(c *Config) { c.Store.GCInterval = 0 }, "store.gc_interval"},
		{"bad breaker", func(c *Config) { c.Store.BreakerFailureThreshold = 0 }, "breaker_failure_threshold"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"explicit cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://reelrank.example"}
		}, ""},
		{"rate limit too low", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 }, ""},
		{"window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard origins should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://reelrank.example"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}
