// Package config loads the innoreg service configuration from YAML.
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

// Config holds the innoreg API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	AI         AIConfig         `yaml:"ai"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Similarity SimilarityConfig `yaml:"similarity"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AIConfig holds embedding and generation provider settings.
type AIConfig struct {
	Provider            string `yaml:"provider"` // label for logs/metrics
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	EmbeddingModel      string `yaml:"embedding_model"`
	ChatModel           string `yaml:"chat_model"`
	Dimensions          int    `yaml:"dimensions"`
	EmbedTimeoutSec     int    `yaml:"embed_timeout_sec"`
	GenerateTimeoutSec  int    `yaml:"generate_timeout_sec"`
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
}

// RetrievalConfig holds hybrid retrieval tuning knobs.
type RetrievalConfig struct {
	VectorThreshold float64 `yaml:"vector_threshold"`
	MaxResults      int     `yaml:"max_results"`
	PreviewRunes    int     `yaml:"preview_runes"`
}

// SimilarityConfig holds the duplicate screening policy. One policy for
// all screening call sites.
type SimilarityConfig struct {
	DuplicateMin  float64 `yaml:"duplicate_min"`
	SimilarMin    float64 `yaml:"similar_min"`
	MaxReferences int     `yaml:"max_references"`
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
		// Generation calls are slow; the write timeout must outlast them.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.AI.EmbedTimeoutSec <= 0 {
		c.AI.EmbedTimeoutSec = 10
	}
	if c.AI.GenerateTimeoutSec <= 0 {
		c.AI.GenerateTimeoutSec = 45
	}
	if c.Retrieval.VectorThreshold <= 0 {
		c.Retrieval.VectorThreshold = 0.35
	}
	if c.Retrieval.MaxResults <= 0 {
		c.Retrieval.MaxResults = 30
	}
	if c.Retrieval.PreviewRunes <= 0 {
		c.Retrieval.PreviewRunes = 800
	}
	if c.Similarity.DuplicateMin <= 0 {
		c.Similarity.DuplicateMin = 70
	}
	if c.Similarity.SimilarMin <= 0 {
		c.Similarity.SimilarMin = 40
	}
	if c.Similarity.MaxReferences <= 0 {
		c.Similarity.MaxReferences = 30
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
	if c.AI.EmbeddingModel == "" {
		return fmt.Errorf("ai.embedding_model is required")
	}
	if c.AI.ChatModel == "" {
		return fmt.Errorf("ai.chat_model is required")
	}
	if c.Retrieval.VectorThreshold >= 1 {
		return fmt.Errorf("retrieval.vector_threshold must be below 1, got %v", c.Retrieval.VectorThreshold)
	}
	if c.Similarity.SimilarMin >= c.Similarity.DuplicateMin {
		return fmt.Errorf("similarity.similar_min (%v) must be below similarity.duplicate_min (%v)",
			c.Similarity.SimilarMin, c.Similarity.DuplicateMin)
	}
	if c.Similarity.DuplicateMin > 100 {
		return fmt.Errorf("similarity.duplicate_min must be at most 100, got %v", c.Similarity.DuplicateMin)
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
