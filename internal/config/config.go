// Package config provides configuration loading and structs for the ecorank server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported inference providers.
const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderMock    = "mock"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Inference InferenceConfig `yaml:"inference"`
	Prompt    PromptConfig    `yaml:"prompt"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string   `yaml:"host"`
	Port                  int      `yaml:"port"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// RequestTimeout returns the per-request timeout applied by the HTTP middleware.
func (s *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// InferenceConfig selects and tunes the inference adapter.
type InferenceConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// Region is used by the bedrock provider.
	Region string `yaml:"region"`
	// Endpoint is the chat-completions URL for the openai provider.
	Endpoint string `yaml:"endpoint"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv       string  `yaml:"api_key_env"`
	Temperature     float64 `yaml:"temperature"`
	TopK            int     `yaml:"top_k"`
	MaxTokens       int     `yaml:"max_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	MaxRetries      *int    `yaml:"max_retries"`
	RetryBaseMillis int     `yaml:"retry_base_millis"`
}

// Retries returns the number of extra attempts after a transient failure; defaults to 2 when unset.
func (c *InferenceConfig) Retries() int {
	if c.MaxRetries != nil {
		return *c.MaxRetries
	}
	return 2
}

// Timeout bounds a single adapter call.
func (c *InferenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBase is the first backoff interval between adapter attempts.
func (c *InferenceConfig) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMillis) * time.Millisecond
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
func (c *InferenceConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// PromptConfig holds the instruction template settings.
type PromptConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// Load reads and parses the config file at path, loads a .env file if one
// exists, applies environment overrides and defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	if cfg.Prompt.File != "" {
		cfg.Prompt.File = expandPath(cfg.Prompt.File, configDir)
	}

	return &cfg, nil
}

// FromEnv builds a configuration from defaults, a .env file in the working
// directory, and ECORANK_* environment variables. Used when no config file exists.
func FromEnv() *Config {
	_ = godotenv.Load()
	cfg := &Config{}
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with ECORANK_* environment variables.
func ApplyEnv(cfg *Config) {
	cfg.Debug = getEnvBool("ECORANK_DEBUG", cfg.Debug)
	cfg.Server.Host = getEnv("ECORANK_SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("ECORANK_SERVER_PORT", cfg.Server.Port)
	cfg.Inference.Provider = getEnv("ECORANK_INFERENCE_PROVIDER", cfg.Inference.Provider)
	cfg.Inference.Model = getEnv("ECORANK_INFERENCE_MODEL", cfg.Inference.Model)
	cfg.Inference.Region = getEnv("ECORANK_INFERENCE_REGION", cfg.Inference.Region)
	cfg.Prompt.File = getEnv("ECORANK_PROMPT_FILE", cfg.Prompt.File)
}

// Validate reports settings that cannot produce a working adapter.
func (c *Config) Validate() error {
	switch c.Inference.Provider {
	case ProviderBedrock, ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("unknown inference provider %q", c.Inference.Provider)
	}
	if c.Inference.Provider == ProviderOpenAI && c.Inference.Endpoint == "" {
		return fmt.Errorf("inference.endpoint is required for the openai provider")
	}
	if c.Inference.TimeoutSeconds <= 0 {
		return fmt.Errorf("inference.timeout_seconds must be positive, got %d", c.Inference.TimeoutSeconds)
	}
	if c.Inference.Retries() < 0 {
		return fmt.Errorf("inference.max_retries must not be negative, got %d", c.Inference.Retries())
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
