package config

import (
	"os"
	"testing"
	"time"

	"github.com/personachat/personachat/internal/completion"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid together config",
			config: &Config{
				CompletionProvider: completion.ProviderTogether,
				TogetherAPIKey:     "test-together-key",
				ListenAddr:         ":8080",
			},
			wantErr: false,
		},
		{
			name: "valid openai config",
			config: &Config{
				CompletionProvider: completion.ProviderOpenAI,
				OpenAIAPIKey:       "test-openai-key",
				ListenAddr:         ":8080",
			},
			wantErr: false,
		},
		{
			name: "valid config with memory backend",
			config: &Config{
				CompletionProvider: completion.ProviderTogether,
				TogetherAPIKey:     "test-together-key",
				MemoryProjectURL:   "https://memory.example.com",
				MemoryAPIKey:       "test-memory-key",
				ListenAddr:         ":8080",
			},
			wantErr: false,
		},
		{
			name: "missing completion credential",
			config: &Config{
				CompletionProvider: completion.ProviderTogether,
				ListenAddr:         ":8080",
			},
			wantErr: true,
			errMsg:  "TOGETHER_API_KEY",
		},
		{
			name: "missing openai credential",
			config: &Config{
				CompletionProvider: completion.ProviderOpenAI,
				TogetherAPIKey:     "test-together-key",
				ListenAddr:         ":8080",
			},
			wantErr: true,
			errMsg:  "OPENAI_API_KEY",
		},
		{
			name: "unknown provider",
			config: &Config{
				CompletionProvider: "mystery",
				TogetherAPIKey:     "test-together-key",
				ListenAddr:         ":8080",
			},
			wantErr: true,
			errMsg:  "COMPLETION_PROVIDER",
		},
		{
			name: "memory url without key",
			config: &Config{
				CompletionProvider: completion.ProviderTogether,
				TogetherAPIKey:     "test-together-key",
				MemoryProjectURL:   "https://memory.example.com",
				ListenAddr:         ":8080",
			},
			wantErr: true,
			errMsg:  "MEMORY_PROJECT_URL",
		},
		{
			name: "empty listen addr",
			config: &Config{
				CompletionProvider: completion.ProviderTogether,
				TogetherAPIKey:     "test-together-key",
			},
			wantErr: true,
			errMsg:  "LISTEN_ADDR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil {
				if tt.errMsg != "" && !contains(err.Error(), tt.errMsg) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err, tt.errMsg)
				}
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"COMPLETION_PROVIDER", "TOGETHER_API_KEY", "OPENAI_API_KEY",
		"COMPLETION_MODEL", "COMPLETION_ENDPOINT", "COMPLETION_TIMEOUT",
		"MEMORY_PROJECT_URL", "MEMORY_API_KEY", "MEMORY_TIMEOUT",
		"MAX_TOKENS", "TEMPERATURE", "TOP_P", "TOP_K", "REPETITION_PENALTY",
		"CONTEXT_TOKEN_BUDGET", "CONTEXT_EVENT_RATIO",
		"STATE_DB", "LISTEN_ADDR",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOGETHER_API_KEY", "test-together-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CompletionProvider != completion.ProviderTogether {
		t.Errorf("CompletionProvider = %q, want together default", cfg.CompletionProvider)
	}
	if cfg.CompletionModel != completion.DefaultTogetherModel {
		t.Errorf("CompletionModel = %q, want %q", cfg.CompletionModel, completion.DefaultTogetherModel)
	}
	if cfg.CompletionTimeout != 30*time.Second {
		t.Errorf("CompletionTimeout = %v, want 30s", cfg.CompletionTimeout)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 || cfg.TopP != 0.7 || cfg.TopK != 50 || cfg.RepetitionPenalty != 1.0 {
		t.Errorf("sampling defaults = %v/%v/%v/%v, want 0.7/0.7/50/1",
			cfg.Temperature, cfg.TopP, cfg.TopK, cfg.RepetitionPenalty)
	}
	if cfg.MemoryEnabled() {
		t.Error("MemoryEnabled() = true with no memory credentials")
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPLETION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-openai-key")
	t.Setenv("COMPLETION_TIMEOUT", "10s")
	t.Setenv("MEMORY_PROJECT_URL", "https://memory.example.com")
	t.Setenv("MEMORY_API_KEY", "test-memory-key")
	t.Setenv("MEMORY_TIMEOUT", "5s")
	t.Setenv("MAX_TOKENS", "256")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CompletionModel != completion.DefaultOpenAIModel {
		t.Errorf("CompletionModel = %q, want openai default", cfg.CompletionModel)
	}
	if cfg.CompletionAPIKey() != "test-openai-key" {
		t.Errorf("CompletionAPIKey() = %q", cfg.CompletionAPIKey())
	}
	if cfg.CompletionTimeout != 10*time.Second {
		t.Errorf("CompletionTimeout = %v, want 10s", cfg.CompletionTimeout)
	}
	if cfg.MemoryTimeout != 5*time.Second {
		t.Errorf("MemoryTimeout = %v, want 5s", cfg.MemoryTimeout)
	}
	if cfg.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", cfg.MaxTokens)
	}
	if !cfg.MemoryEnabled() {
		t.Error("MemoryEnabled() = false with both memory credentials set")
	}
}

func TestLoadConfigBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad timeout", key: "COMPLETION_TIMEOUT", value: "soon"},
		{name: "bad int", key: "MAX_TOKENS", value: "many"},
		{name: "bad float", key: "TEMPERATURE", value: "warm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TOGETHER_API_KEY", "test-together-key")
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() with %s=%q expected error, got nil", tt.key, tt.value)
			}
		})
	}
}

// Helper function to check if a string contains a substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && containsHelper(s, substr)))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
