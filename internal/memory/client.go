// Package memory is a thin typed client for the hosted profile/event
// memory backend. Read paths fail soft so chat keeps working without
// memory; the save path surfaces its errors.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Defaults for context retrieval and the gateway timeout. The backend
// had no timeout in the first revision of this app; every call is now
// bounded so a slow backend cannot stall a submission.
const (
	DefaultTimeout            = 8 * time.Second
	DefaultContextTokenBudget = 1000
	DefaultContextEventRatio  = 0.6

	appTag = "personachat"
)

// Message is one role/content pair inside an inserted conversation blob.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the memory backend over HTTPS.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new memory backend client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errmsg string          `json:"errmsg"`
}

// CreateIdentity registers a new identity with the backend and returns
// the backend-issued identifier.
func (c *Client) CreateIdentity(ctx context.Context, name string) (string, error) {
	body := map[string]any{
		"data": map[string]any{
			"created_at": time.Now().UTC().Format(time.RFC3339),
			"app":        appTag,
			"name":       name,
		},
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/users", body, &result); err != nil {
		return "", fmt.Errorf("failed to register memory identity: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("memory backend issued an empty identity")
	}

	c.logger.InfoContext(ctx, "registered memory identity", "identity", result.ID)
	return result.ID, nil
}

// GetIdentity checks that an identity still exists on the backend.
// Returns ErrIdentityNotFound when the backend reports it unknown.
func (c *Client) GetIdentity(ctx context.Context, identity string) error {
	err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(identity), nil, nil)
	if err != nil {
		return err
	}
	return nil
}

// FetchContext retrieves a bounded natural-language summary for the
// identity. Fails soft: any error or empty result yields an empty
// string, never a user-facing error.
func (c *Client) FetchContext(ctx context.Context, identity string, maxTokens int, eventRatio float64) string {
	if maxTokens <= 0 {
		maxTokens = DefaultContextTokenBudget
	}
	if eventRatio <= 0 {
		eventRatio = DefaultContextEventRatio
	}

	q := url.Values{}
	q.Set("max_token_size", strconv.Itoa(maxTokens))
	q.Set("event_ratio", strconv.FormatFloat(eventRatio, 'f', -1, 64))
	q.Set("with_summary", "true")
	path := "/api/v1/users/context/" + url.PathEscape(identity) + "?" + q.Encode()

	var result struct {
		Context string `json:"context"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		c.logger.WarnContext(ctx, "memory context unavailable, continuing without it", "error", err)
		return ""
	}

	c.logger.InfoContext(ctx, "fetched memory context",
		"identity", identity,
		"context_length", len(result.Context))

	return result.Context
}

// RecordTurn submits one question/answer exchange as a single atomic
// two-message insert, then triggers extraction with an explicit flush.
// Not idempotent: calling it twice for the same turn creates two backend
// records, so callers must guard with the turn's saved flag.
func (c *Client) RecordTurn(ctx context.Context, identity, questionText, responseText string) error {
	body := map[string]any{
		"blob_type": "chat",
		"blob_data": map[string]any{
			"messages": []Message{
				{Role: "user", Content: questionText},
				{Role: "assistant", Content: responseText},
			},
		},
	}

	var inserted struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/blobs/insert/"+url.PathEscape(identity), body, &inserted); err != nil {
		return NewSaveError("insert", err)
	}

	if err := c.do(ctx, http.MethodPost, "/api/v1/users/buffer/"+url.PathEscape(identity)+"/chat", nil, nil); err != nil {
		return NewSaveError("flush", err)
	}

	c.logger.InfoContext(ctx, "recorded conversation turn",
		"identity", identity,
		"blob_id", inserted.ID)

	return nil
}

// do performs one request against the backend, unwrapping the uniform
// response envelope into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrIdentityNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("memory backend error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Errmsg != "" {
		return fmt.Errorf("memory backend error: %s", env.Errmsg)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("memory backend returned no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}
