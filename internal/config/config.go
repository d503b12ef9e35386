package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

// Config holds the smartdoc configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Matching   MatchingConfig   `yaml:"matching"`
	Session    SessionConfig    `yaml:"session"`
	Export     ExportConfig     `yaml:"export"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
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
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	MaxUploadMB     int      `yaml:"max_upload_mb"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverBadger = "badger"
)

// DatabaseConfig holds session store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, badger (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Path             string   `yaml:"path"`      // badger data directory
	InMemory         bool     `yaml:"in_memory"` // badger without disk
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// EmbeddingConfig pins the embedding provider and model.
type EmbeddingConfig struct {
	Provider       string  `yaml:"provider"` // openai, ollama (default: openai)
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Dimensions     int     `yaml:"dimensions"` // 0 = learn from the first probe
	Instruction    string  `yaml:"instruction"`
	MaxBatch       int     `yaml:"max_batch"`
	RateLimit      float64 `yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int     `yaml:"rate_burst"`
	LoadTimeoutSec int     `yaml:"load_timeout_sec"`
	EagerLoad      bool    `yaml:"eager_load"`
}

// MatchingConfig holds engine defaults. Thresholds are pointers because 0 is a valid value.
type MatchingConfig struct {
	MatchThreshold      *float64 `yaml:"match_threshold"`
	SuggestionThreshold *float64 `yaml:"suggestion_threshold"`
	NumSuggestions      int      `yaml:"num_suggestions"`
	BatchSize           int      `yaml:"batch_size"`
	PoolSize            int      `yaml:"pool_size"` // 0 = one worker per CPU
	TimeoutSec          int      `yaml:"timeout_sec"`
}

// SessionConfig holds shareable session settings.
type SessionConfig struct {
	TTLHours     int    `yaml:"ttl_hours"` // 0 = keep forever
	ShareBaseURL string `yaml:"share_base_url"`
	SnippetLimit int    `yaml:"snippet_limit"`
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	FontSize float64 `yaml:"font_size"`
	Title    string  `yaml:"title"`
	MaxPages int     `yaml:"max_pages"`
}

// DictionaryConfig holds word definition settings. An empty WordNetPath disables
// POST /definitions.
type DictionaryConfig struct {
	WordNetPath string `yaml:"wordnet_path"` // WordNet 3.x dict directory
	EagerLoad   bool   `yaml:"eager_load"`   // parse at startup instead of on first lookup
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 32
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	vec := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 256
	}
	if c.Embedding.RateBurst <= 0 {
		c.Embedding.RateBurst = 1
	}
	if c.Embedding.LoadTimeoutSec <= 0 {
		c.Embedding.LoadTimeoutSec = 60
	}

	match := domain.DefaultMatchConfig()
	if c.Matching.MatchThreshold == nil {
		c.Matching.MatchThreshold = &match.MatchThreshold
	}
	if c.Matching.SuggestionThreshold == nil {
		c.Matching.SuggestionThreshold = &match.SuggestionThreshold
	}
	if c.Matching.NumSuggestions <= 0 {
		c.Matching.NumSuggestions = match.NumSuggestions
	}
	if c.Matching.BatchSize <= 0 {
		c.Matching.BatchSize = match.BatchSize
	}
	if c.Matching.TimeoutSec <= 0 {
		c.Matching.TimeoutSec = int(match.Timeout / time.Second)
	}

	if c.Session.ShareBaseURL == "" {
		c.Session.ShareBaseURL = "http://localhost:5173"
	}
	if c.Session.SnippetLimit <= 0 {
		c.Session.SnippetLimit = 10000
	}

	if c.Export.FontSize <= 0 {
		c.Export.FontSize = 12
	}
	if c.Export.MaxPages <= 0 {
		c.Export.MaxPages = 500
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverBadger:
		if c.Database.Path == "" && !c.Database.InMemory {
			return fmt.Errorf("database.path is required for driver %q unless in_memory is set", DriverBadger)
		}
	default:
		return fmt.Errorf("database.driver must be one of redis, valkey, badger, got %q", c.Database.Driver)
	}

	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"ollama\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("embedding.rate_limit must not be negative, got %v", c.Embedding.RateLimit)
	}

	for name, t := range map[string]*float64{
		"matching.match_threshold":      c.Matching.MatchThreshold,
		"matching.suggestion_threshold": c.Matching.SuggestionThreshold,
	} {
		if t != nil && (*t < -1 || *t > 1) {
			return fmt.Errorf("%s must be in [-1, 1], got %v", name, *t)
		}
	}
	if c.Matching.PoolSize < 0 {
		return fmt.Errorf("matching.pool_size must not be negative, got %d", c.Matching.PoolSize)
	}
	if c.Session.TTLHours < 0 {
		return fmt.Errorf("session.ttl_hours must not be negative, got %d", c.Session.TTLHours)
	}
	return nil
}

// MatchConfig converts the matching section to engine settings. Call after ApplyDefaults.
func (c *Config) MatchConfig() domain.MatchConfig {
	return domain.MatchConfig{
		MatchThreshold:      *c.Matching.MatchThreshold,
		SuggestionThreshold: *c.Matching.SuggestionThreshold,
		NumSuggestions:      c.Matching.NumSuggestions,
		BatchSize:           c.Matching.BatchSize,
		PoolSize:            c.Matching.PoolSize,
		Timeout:             time.Duration(c.Matching.TimeoutSec) * time.Second,
	}
}

// SessionTTL returns the session expiry; zero means no expiry.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
