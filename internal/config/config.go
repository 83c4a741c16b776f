package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the newsrec configuration shared by the API server and the CLI.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Recommend RecommendConfig `yaml:"recommend"`
	Semantic  SemanticConfig  `yaml:"semantic"`
	Cache     CacheConfig     `yaml:"cache"`
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

// CorpusConfig selects the article source. Exactly one of Dir and CSV is set.
type CorpusConfig struct {
	Dir      string `yaml:"dir"`
	CSV      string `yaml:"csv"`
	Language string `yaml:"language"` // stop-word list: es (default), en, none
}

// RecommendConfig bounds result sizes.
type RecommendConfig struct {
	DefaultTopN  int `yaml:"default_top_n"`
	MaxTopN      int `yaml:"max_top_n"`
	PreviewChars int `yaml:"preview_chars"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// SemanticConfig configures the OpenAI-compatible embedding backend.
type SemanticConfig struct {
	Enabled             bool         `yaml:"enabled"`
	Provider            string       `yaml:"provider"`
	BaseURL             string       `yaml:"base_url"`
	APIKey              string       `yaml:"api_key"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	BatchSize           int          `yaml:"batch_size"`
	Concurrency         int          `yaml:"concurrency"`
	QueryCacheSize      int          `yaml:"query_cache_size"`
	InitTimeoutSec      int          `yaml:"init_timeout_sec"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	Budget              BudgetConfig `yaml:"budget"`
}

// CacheConfig holds the Redis embedding cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Language == "" {
		c.Corpus.Language = "es"
	}
	if c.Recommend.DefaultTopN <= 0 {
		c.Recommend.DefaultTopN = 5
	}
	if c.Recommend.MaxTopN <= 0 {
		c.Recommend.MaxTopN = 15
	}
	if c.Recommend.PreviewChars <= 0 {
		c.Recommend.PreviewChars = 150
	}
	if c.Semantic.Provider == "" {
		c.Semantic.Provider = "openai"
	}
	if c.Semantic.BatchSize <= 0 {
		c.Semantic.BatchSize = 64
	}
	if c.Semantic.Concurrency <= 0 {
		c.Semantic.Concurrency = 4
	}
	if c.Semantic.QueryCacheSize <= 0 {
		c.Semantic.QueryCacheSize = 1024
	}
	if c.Semantic.InitTimeoutSec <= 0 {
		c.Semantic.InitTimeoutSec = 300
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "newsrec:"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 30
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if (c.Corpus.Dir == "") == (c.Corpus.CSV == "") {
		return fmt.Errorf("exactly one of corpus.dir and corpus.csv is required")
	}
	switch c.Corpus.Language {
	case "es", "en", "none":
	default:
		return fmt.Errorf("corpus.language must be \"es\", \"en\" or \"none\", got %q", c.Corpus.Language)
	}
	if c.Recommend.DefaultTopN > c.Recommend.MaxTopN {
		return fmt.Errorf("recommend.default_top_n (%d) exceeds recommend.max_top_n (%d)",
			c.Recommend.DefaultTopN, c.Recommend.MaxTopN)
	}
	if c.Semantic.Enabled {
		if c.Semantic.BaseURL == "" || c.Semantic.Model == "" {
			return fmt.Errorf("semantic.base_url and semantic.model are required when semantic is enabled")
		}
		switch c.Semantic.Budget.Action {
		case "", "warn", "reject":
			// ok
		default:
			return fmt.Errorf(
				"semantic.budget.action must be \"warn\" or \"reject\", got %q",
				c.Semantic.Budget.Action,
			)
		}
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
