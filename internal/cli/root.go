// Package cli implements the personachat CLI commands.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/personachat/personachat/internal/completion"
	"github.com/personachat/personachat/internal/config"
	"github.com/personachat/personachat/internal/logging"
	"github.com/personachat/personachat/internal/memory"
)

var (
	logFormat string
	verbose   bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "personachat",
	Short: "Personality-type persona chat with long-term memory",
	Long: "Chat with a chatbot that answers in the voice of one of sixteen personality types.\n" +
		"Conversations can be saved to a per-user memory store so later answers can\n" +
		"reference earlier facts about you.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(logFormat, level)
}

// loadConfig loads and validates configuration. A missing completion
// credential is fatal here, before any request could be attempted.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildCompleter(cfg *config.Config, logger *slog.Logger) completion.Completer {
	return completion.NewClient(completion.ClientConfig{
		Provider: cfg.CompletionProvider,
		APIKey:   cfg.CompletionAPIKey(),
		Endpoint: cfg.CompletionEndpoint,
		Timeout:  cfg.CompletionTimeout,
		Params: completion.Params{
			Model:             cfg.CompletionModel,
			MaxTokens:         cfg.MaxTokens,
			Temperature:       cfg.Temperature,
			TopP:              cfg.TopP,
			TopK:              cfg.TopK,
			RepetitionPenalty: cfg.RepetitionPenalty,
		},
	}, logger)
}

// buildMemoryClient returns nil when the memory backend is not
// configured; callers treat nil as memory disabled.
func buildMemoryClient(cfg *config.Config, logger *slog.Logger) *memory.Client {
	if !cfg.MemoryEnabled() {
		return nil
	}
	return memory.NewClient(cfg.MemoryProjectURL, cfg.MemoryAPIKey, cfg.MemoryTimeout, logger)
}
