package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI, Model: "all-MiniLM-L6-v2"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	alpha := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"default alpha", func(c *Config) { c.Search.DefaultAlpha = alpha(1.2) }, "search.default_alpha"},
		{"raw alpha", func(c *Config) { c.Search.RawAlpha = -0.5 }, "search.raw_alpha"},
		{"workers", func(c *Config) { c.Backfill.Workers = -1 }, "backfill.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_LocalProviderNeedsNoModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding = EmbeddingConfig{Provider: ProviderLocal}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("expected provider %q, got %q", ProviderOpenAI, cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.Alpha() != 0.5 {
		t.Errorf("expected DefaultAlpha=0.5, got %v", cfg.Search.Alpha())
	}
	if cfg.Search.RawAlpha != 0 {
		t.Errorf("expected RawAlpha=0, got %v", cfg.Search.RawAlpha)
	}
	if cfg.Search.Timeout() != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Search.Timeout())
	}
	if cfg.Backfill.ScanCount != 1000 || cfg.Backfill.BatchSize != 500 || cfg.Backfill.ProgressEvery != 1000 {
		t.Errorf("unexpected backfill defaults: %+v", cfg.Backfill)
	}
	if cfg.Backfill.Workers != 0 {
		t.Errorf("workers must stay 0 (GOMAXPROCS), got %d", cfg.Backfill.Workers)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{DefaultAlpha: &zero, TimeoutMS: 250},
		Backfill: BackfillConfig{BatchSize: 50, Workers: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Search.Alpha() != 0 {
		t.Errorf("explicit alpha 0 must survive defaults, got %v", cfg.Search.Alpha())
	}
	if cfg.Search.Timeout() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Search.Timeout())
	}
	if cfg.Backfill.BatchSize != 50 || cfg.Backfill.Workers != 3 {
		t.Errorf("unexpected backfill: %+v", cfg.Backfill)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MOVIESEARCH_TEST_ADDR", "redis:6380")

	out, err := expandEnvVars([]byte("a: ${MOVIESEARCH_TEST_ADDR}\nb: ${MOVIESEARCH_UNSET:-fallback}\nc: ${MOVIESEARCH_UNSET}\nd: ${MOVIESEARCH_TEST_ADDR:?set me}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a: redis:6380\nb: fallback\nc: \nd: redis:6380"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestExpandEnvVars_Required(t *testing.T) {
	_, err := expandEnvVars([]byte("password: ${MOVIESEARCH_UNSET_SECRET:?redis password}\nkey: ${MOVIESEARCH_UNSET_KEY:?api key}"))
	if err == nil {
		t.Fatal("expected error for unset required variables")
	}
	for _, want := range []string{"MOVIESEARCH_UNSET_SECRET: redis password", "MOVIESEARCH_UNSET_KEY: api key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MOVIESEARCH_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	yaml := `
http:
  port: ${MOVIESEARCH_TEST_PORT}
database:
  addrs: ["${MOVIESEARCH_TEST_REDIS:-localhost:6379}"]
embedding:
  provider: local
search:
  default_alpha: 0.3
  raw_alpha: 0.0
backfill:
  workers: 4
auth:
  api_keys: ["k1"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Search.Alpha() != 0.3 {
		t.Errorf("alpha = %v, want 0.3", cfg.Search.Alpha())
	}
	if cfg.Backfill.Workers != 4 || cfg.Backfill.BatchSize != 500 {
		t.Errorf("backfill = %+v", cfg.Backfill)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for missing addrs")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoad_LocalProfile(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port == 0 || len(cfg.Database.Addrs) == 0 {
		t.Errorf("unexpected local config: %+v", cfg)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("expected local, got %q", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("expected prod, got %q", GetEnv())
	}
}
