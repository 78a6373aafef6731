// Package completion wraps the hosted chat-completion backends behind a
// typed client with a bounded request timeout and a fixed error taxonomy.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Params are the sampling parameters sent with every request.
type Params struct {
	Model             string
	MaxTokens         int
	Temperature       float64
	TopP              float64
	TopK              int
	RepetitionPenalty float64
}

// DefaultParams returns the product-tuning defaults for the given provider.
func DefaultParams(provider string) Params {
	model := DefaultTogetherModel
	if provider == ProviderOpenAI {
		model = DefaultOpenAIModel
	}
	return Params{
		Model:             model,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       DefaultTemperature,
		TopP:              DefaultTopP,
		TopK:              DefaultTopK,
		RepetitionPenalty: DefaultRepetitionPenalty,
	}
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Provider string // together or openai; empty means together
	APIKey   string
	Endpoint string        // override for the together endpoint; tests use this
	Timeout  time.Duration // zero means DefaultTimeout
	Params   Params
}

// Client sends persona prompts to a chat-completion backend.
type Client struct {
	provider     string
	apiKey       string
	endpoint     string
	timeout      time.Duration
	params       Params
	httpClient   *http.Client
	openaiClient *openai.Client
	logger       *slog.Logger
}

// NewClient creates a new completion client with proper timeouts
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = togetherEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var oaClient *openai.Client
	if provider == ProviderOpenAI {
		oaClient = openai.NewClient(cfg.APIKey)
	}

	return &Client{
		provider: provider,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		timeout:  timeout,
		params:   cfg.Params,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		openaiClient: oaClient,
		logger:       logger,
	}
}

// Complete sends the prompt and returns the completion text. Failures
// are always a *Error; there are no automatic retries.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.InfoContext(ctx, "sending completion request",
		"provider", c.provider,
		"model", c.params.Model,
		"max_tokens", c.params.MaxTokens,
		"prompt_length", len(prompt))

	switch c.provider {
	case ProviderOpenAI:
		return c.completeOpenAI(ctx, prompt)
	default:
		return c.completeTogether(ctx, prompt)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model             string        `json:"model"`
	Messages          []chatMessage `json:"messages"`
	MaxTokens         int           `json:"max_tokens"`
	Temperature       float64       `json:"temperature"`
	TopP              float64       `json:"top_p"`
	TopK              int           `json:"top_k"`
	RepetitionPenalty float64       `json:"repetition_penalty"`
	Stop              []string      `json:"stop"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// completeTogether sends a request to the Together chat-completions API
func (c *Client) completeTogether(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestBody := chatRequest{
		Model:             c.params.Model,
		Messages:          []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:         c.params.MaxTokens,
		Temperature:       c.params.Temperature,
		TopP:              c.params.TopP,
		TopK:              c.params.TopK,
		RepetitionPenalty: c.params.RepetitionPenalty,
		Stop:              []string{""},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "completion API error",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return "", classifyStatus(resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.ErrorContext(ctx, "undecodable completion response", "error", err)
		return "", NewError(KindMalformedResponse, resp.StatusCode, "response body is not valid JSON", err)
	}

	if len(result.Choices) == 0 {
		c.logger.ErrorContext(ctx, "completion response carries no choices")
		return "", NewError(KindMalformedResponse, resp.StatusCode, "no choices in response", nil)
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)

	c.logger.InfoContext(ctx, "received completion response",
		"response_length", len(content))

	return content, nil
}

// completeOpenAI sends a request through the OpenAI SDK
func (c *Client) completeOpenAI(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.params.Model,
			MaxTokens:   c.params.MaxTokens,
			Temperature: float32(c.params.Temperature),
			TopP:        float32(c.params.TopP),
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.logger.ErrorContext(ctx, "OpenAI API error",
				"status_code", apiErr.HTTPStatusCode,
				"error", err)
			return "", classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", c.classifyTransportError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		c.logger.ErrorContext(ctx, "OpenAI response carries no choices")
		return "", NewError(KindMalformedResponse, 0, "no choices in response", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	c.logger.InfoContext(ctx, "received OpenAI response",
		"response_length", len(content))

	return content, nil
}

// classifyTransportError maps request-level failures to Timeout or
// ConnectionFailure.
func (c *Client) classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.ErrorContext(ctx, "completion request timed out", "timeout", c.timeout)
		return NewError(KindTimeout, 0, fmt.Sprintf("no response within %s", c.timeout), err)
	}
	c.logger.ErrorContext(ctx, "completion request failed", "error", err)
	return NewError(KindConnectionFailure, 0, "transport failure", err)
}

// classifyStatus maps a non-2xx status to the error taxonomy.
func classifyStatus(status int, detail string) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewError(KindAuthFailure, status, detail, nil)
	case http.StatusTooManyRequests:
		return NewError(KindRateLimited, status, detail, nil)
	default:
		return NewError(KindBackendError, status, detail, nil)
	}
}
