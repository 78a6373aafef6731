package completion

import "time"

// Provider and model constants
const (
	ProviderTogether = "together"
	ProviderOpenAI   = "openai"
	DefaultProvider  = ProviderTogether

	DefaultTogetherModel = "mistralai/Mistral-7B-Instruct-v0.1"
	DefaultOpenAIModel   = "gpt-4o"

	togetherEndpoint = "https://api.together.xyz/v1/chat/completions"

	DefaultTimeout = 30 * time.Second
)

// Product-tuning sampling defaults. Overridable through configuration,
// not part of the wire protocol.
const (
	DefaultMaxTokens         = 512
	DefaultTemperature       = 0.7
	DefaultTopP              = 0.7
	DefaultTopK              = 50
	DefaultRepetitionPenalty = 1.0
)
