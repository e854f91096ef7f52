package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// Config holds the moviesearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Backfill  BackfillConfig  `yaml:"backfill"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai | local
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	// MaxBatchSize caps the texts sent per provider call.
	MaxBatchSize int `yaml:"max_batch_size"`
}

// SearchConfig tunes the interactive search paths.
type SearchConfig struct {
	// DefaultAlpha weights the vector score in native mode when the request has none.
	DefaultAlpha *float64 `yaml:"default_alpha"`
	// RawAlpha weights the vector score in raw mode.
	RawAlpha  float64 `yaml:"raw_alpha"`
	TimeoutMS int     `yaml:"timeout_ms"`
}

// Timeout returns the per-request search deadline.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Alpha returns the native default vector weight.
func (c SearchConfig) Alpha() float64 {
	if c.DefaultAlpha == nil {
		return DefaultAlpha
	}
	return *c.DefaultAlpha
}

// BackfillConfig tunes the embedding backfill job.
type BackfillConfig struct {
	ScanCount     int64 `yaml:"scan_count"`
	BatchSize     int   `yaml:"batch_size"`
	Workers       int   `yaml:"workers"` // 0 = GOMAXPROCS
	ProgressEvery int64 `yaml:"progress_every"`
}

// Defaults applied by ApplyDefaults.
const (
	DefaultAlpha      = 0.5
	DefaultDimensions = 384
	DefaultTimeoutMS  = 5000
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
	}

	data, err = expandEnvVars(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = DefaultDimensions
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}
	if c.Search.DefaultAlpha == nil {
		alpha := DefaultAlpha
		c.Search.DefaultAlpha = &alpha
	}
	if c.Search.TimeoutMS <= 0 {
		c.Search.TimeoutMS = DefaultTimeoutMS
	}
	if c.Backfill.ScanCount <= 0 {
		c.Backfill.ScanCount = 1000
	}
	if c.Backfill.BatchSize <= 0 {
		c.Backfill.BatchSize = 500
	}
	if c.Backfill.ProgressEvery <= 0 {
		c.Backfill.ProgressEvery = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI:
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", ProviderOpenAI)
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderLocal, c.Embedding.Provider)
	}
	if err := validateAlpha("search.default_alpha", c.Search.Alpha()); err != nil {
		return err
	}
	if err := validateAlpha("search.raw_alpha", c.Search.RawAlpha); err != nil {
		return err
	}
	if c.Backfill.Workers < 0 {
		return fmt.Errorf("backfill.workers must not be negative, got %d", c.Backfill.Workers)
	}
	return nil
}

func validateAlpha(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

// findConfigPath resolves <env>.yaml in ./config, then in the module's config
// directory so tests run from a package directory still find it.
func findConfigPath(env string) string {
	name := env + ".yaml"
	candidates := []string{filepath.Join("config", name)}
	if _, src, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(src), "..", "..")
		candidates = append(candidates, filepath.Join(root, "config", name))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

// envRef matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// expandEnvVars substitutes environment references. ${VAR:?message} fails
// the load when VAR is empty, so prod can insist on secrets.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string
	out := envRef.ReplaceAllFunc(data, func(match []byte) []byte {
		m := envRef.FindSubmatch(match)
		name, op, arg := string(m[1]), string(m[2]), string(m[3])
		val := os.Getenv(name)
		if val != "" {
			return []byte(val)
		}
		switch op {
		case ":-":
			return []byte(arg)
		case ":?":
			missing = append(missing, name+": "+arg)
		}
		return nil
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables unset: %s", strings.Join(missing, "; "))
	}
	return out, nil
}
