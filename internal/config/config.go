package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/personachat/personachat/internal/completion"
	"github.com/personachat/personachat/internal/memory"
)

// Config holds all configuration values
type Config struct {
	// Completion backend. The credential for the selected provider is
	// required; the application refuses to start without it.
	CompletionProvider string
	TogetherAPIKey     string
	OpenAIAPIKey       string
	CompletionModel    string
	CompletionEndpoint string // override for tests and self-hosted gateways
	CompletionTimeout  time.Duration

	// Sampling parameters. Product-tuning constants, overridable.
	MaxTokens         int
	Temperature       float64
	TopP              float64
	TopK              int
	RepetitionPenalty float64

	// Memory backend. Optional: leaving these empty disables memory
	// features without disabling chat.
	MemoryProjectURL   string
	MemoryAPIKey       string
	MemoryTimeout      time.Duration
	ContextTokenBudget int
	ContextEventRatio  float64

	// Local durable state and the HTTP listener.
	StateDBPath string
	ListenAddr  string
}

// LoadConfig loads environment variables from .env file and returns a Config struct
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional - may not exist in production)
	_ = godotenv.Load(".env")

	cfg := &Config{
		CompletionProvider: getEnv("COMPLETION_PROVIDER", completion.DefaultProvider),
		TogetherAPIKey:     os.Getenv("TOGETHER_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		CompletionModel:    os.Getenv("COMPLETION_MODEL"),
		CompletionEndpoint: os.Getenv("COMPLETION_ENDPOINT"),
		MemoryProjectURL:   os.Getenv("MEMORY_PROJECT_URL"),
		MemoryAPIKey:       os.Getenv("MEMORY_API_KEY"),
		StateDBPath:        getEnv("STATE_DB", defaultStateDBPath()),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
	}

	if cfg.CompletionModel == "" {
		if cfg.CompletionProvider == completion.ProviderOpenAI {
			cfg.CompletionModel = completion.DefaultOpenAIModel
		} else {
			cfg.CompletionModel = completion.DefaultTogetherModel
		}
	}

	var err error
	if cfg.CompletionTimeout, err = getDuration("COMPLETION_TIMEOUT", completion.DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.MemoryTimeout, err = getDuration("MEMORY_TIMEOUT", memory.DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = getInt("MAX_TOKENS", completion.DefaultMaxTokens); err != nil {
		return nil, err
	}
	if cfg.Temperature, err = getFloat("TEMPERATURE", completion.DefaultTemperature); err != nil {
		return nil, err
	}
	if cfg.TopP, err = getFloat("TOP_P", completion.DefaultTopP); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getInt("TOP_K", completion.DefaultTopK); err != nil {
		return nil, err
	}
	if cfg.RepetitionPenalty, err = getFloat("REPETITION_PENALTY", completion.DefaultRepetitionPenalty); err != nil {
		return nil, err
	}
	if cfg.ContextTokenBudget, err = getInt("CONTEXT_TOKEN_BUDGET", memory.DefaultContextTokenBudget); err != nil {
		return nil, err
	}
	if cfg.ContextEventRatio, err = getFloat("CONTEXT_EVENT_RATIO", memory.DefaultContextEventRatio); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.CompletionProvider {
	case completion.ProviderTogether:
		if c.TogetherAPIKey == "" {
			return NewConfigError("TOGETHER_API_KEY", "environment variable is required")
		}
	case completion.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return NewConfigError("OPENAI_API_KEY", "environment variable is required for the openai provider")
		}
	default:
		return NewConfigError("COMPLETION_PROVIDER", fmt.Sprintf("must be %q or %q", completion.ProviderTogether, completion.ProviderOpenAI))
	}

	if (c.MemoryProjectURL == "") != (c.MemoryAPIKey == "") {
		return NewConfigError("MEMORY_PROJECT_URL and MEMORY_API_KEY", "must be set together or not at all")
	}

	if c.ListenAddr == "" {
		return NewConfigError("LISTEN_ADDR", "cannot be empty")
	}

	return nil
}

// MemoryEnabled reports whether the memory backend is configured.
// Absence disables memory features, never chat.
func (c *Config) MemoryEnabled() bool {
	return c.MemoryProjectURL != "" && c.MemoryAPIKey != ""
}

// CompletionAPIKey returns the credential for the selected provider.
func (c *Config) CompletionAPIKey() string {
	if c.CompletionProvider == completion.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.TogetherAPIKey
}

func defaultStateDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "personachat.db"
	}
	return filepath.Join(home, ".personachat", "state.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, NewConfigError(key, fmt.Sprintf("invalid integer %q", v))
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, NewConfigError(key, fmt.Sprintf("invalid number %q", v))
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, NewConfigError(key, fmt.Sprintf("invalid duration %q", v))
	}
	return d, nil
}
