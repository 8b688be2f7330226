package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	LLM         LLMConfig         `toml:"llm"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Claude      ClaudeConfig      `toml:"claude"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Prompt      PromptConfig      `toml:"prompt"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// LLMProvider selects the generation backend
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the generation provider. Embeddings always come from
// Gemini so one fixed embedding model serves the whole deployment.
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model" validate:"required"`       // generation model
	EmbedModel     string  `toml:"embed_model" validate:"required"` // embedding model
	EmbedDimension int     `toml:"embed_dimension" validate:"gt=0"` // fixed output dimensionality
	Temperature    float32 `toml:"temperature" validate:"gte=0,lte=2"`
	Timeout        string  `toml:"timeout"`    // per-call timeout as duration string
	RateLimit      string  `toml:"rate_limit"` // minimum interval between API calls
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model" validate:"required"`
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=1"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
}

// RetrievalConfig tunes the similarity search and context assembly.
// The threshold and limit defaults look permissive/narrow but they are
// deployment tuning, deliberately kept out of code.
type RetrievalConfig struct {
	Threshold   float64 `toml:"threshold" validate:"gte=0,lte=1"` // minimum similarity score
	Limit       int     `toml:"limit" validate:"gte=1"`           // max matches per search
	TokenBudget int     `toml:"token_budget" validate:"gt=0"`     // context assembly budget
}

// PromptConfig carries the persona preamble rendered ahead of every prompt.
type PromptConfig struct {
	Preamble string `toml:"preamble" validate:"required"`
}

// MaintenanceConfig schedules periodic Badger value-log GC.
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron format
}

// DefaultPreamble frames answers as dream interpretation. Replace it in
// config to repurpose the pipeline for another corpus.
const DefaultPreamble = `You are a thoughtful dream interpreter. Using the reference passages ` +
	`provided (when any are present), offer a warm, grounded interpretation of the dream the ` +
	`user describes. Cite imagery from the references where it applies, acknowledge when the ` +
	`references say nothing relevant, and never present speculation as fact.`

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in oneiro.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKey:         "",
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.7,
			Timeout:        "2m",
			RateLimit:      "4s", // 15 RPM free tier
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Temperature: 0.7,
			Timeout:     "2m",
			RateLimit:   "1s",
		},
		Retrieval: RetrievalConfig{
			Threshold:   0.2,
			Limit:       1,
			TokenBudget: 1500,
		},
		Prompt: PromptConfig{
			Preamble: DefaultPreamble,
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "0 0 */6 * * *", // every 6 hours
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// CLI flags are applied afterwards via ApplyFlagOverrides.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks config invariants with the validator tags above.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("ONEIRO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ONEIRO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("ONEIRO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("ONEIRO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if provider := os.Getenv("ONEIRO_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	if threshold := os.Getenv("ONEIRO_RETRIEVAL_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Retrieval.Threshold = t
		}
	}
	if limit := os.Getenv("ONEIRO_RETRIEVAL_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Retrieval.Limit = l
		}
	}
	if budget := os.Getenv("ONEIRO_RETRIEVAL_TOKEN_BUDGET"); budget != "" {
		if b, err := strconv.Atoi(budget); err == nil {
			config.Retrieval.TokenBudget = b
		}
	}
}
