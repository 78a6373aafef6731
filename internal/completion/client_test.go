package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(endpoint string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{
		APIKey:   "test-key",
		Endpoint: endpoint,
		Timeout:  timeout,
		Params:   DefaultParams(ProviderTogether),
	}, testLogger())
}

func completionResponse(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + content + `"}}]}`
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("request body is not valid JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("Focus on long-term strategy.  ")))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	got, err := client.Complete(context.Background(), "test prompt")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Focus on long-term strategy." {
		t.Errorf("Complete() = %q, want trimmed completion text", got)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q, want bearer credential", gotAuth)
	}
	if gotBody.Model != DefaultTogetherModel {
		t.Errorf("request model = %q, want %q", gotBody.Model, DefaultTogetherModel)
	}
	if gotBody.MaxTokens != DefaultMaxTokens {
		t.Errorf("request max_tokens = %d, want %d", gotBody.MaxTokens, DefaultMaxTokens)
	}
	if gotBody.TopK != DefaultTopK {
		t.Errorf("request top_k = %d, want %d", gotBody.TopK, DefaultTopK)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" || gotBody.Messages[0].Content != "test prompt" {
		t.Errorf("request messages = %+v, want one user message with the prompt", gotBody.Messages)
	}
}

func TestCompleteStatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   Kind
		wantStatus int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: KindAuthFailure, wantStatus: 401},
		{name: "forbidden", status: http.StatusForbidden, wantKind: KindAuthFailure, wantStatus: 403},
		{name: "rate limited", status: http.StatusTooManyRequests, wantKind: KindRateLimited, wantStatus: 429},
		{name: "server error", status: http.StatusInternalServerError, wantKind: KindBackendError, wantStatus: 500},
		{name: "bad gateway", status: http.StatusBadGateway, wantKind: KindBackendError, wantStatus: 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL, 5*time.Second)
			_, err := client.Complete(context.Background(), "test prompt")
			if err == nil {
				t.Fatal("Complete() expected error, got nil")
			}

			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("Complete() error type = %T, want *Error", err)
			}
			if cerr.Kind != tt.wantKind {
				t.Errorf("error kind = %q, want %q", cerr.Kind, tt.wantKind)
			}
			if cerr.StatusCode != tt.wantStatus {
				t.Errorf("error status = %d, want %d", cerr.StatusCode, tt.wantStatus)
			}
			if cerr.UserMessage() == "" {
				t.Error("UserMessage() is empty")
			}
		})
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "<html>gateway</html>"},
		{name: "missing choices", body: `{"id":"x"}`},
		{name: "empty choices", body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, 5*time.Second)
			_, err := client.Complete(context.Background(), "test prompt")

			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("Complete() error type = %T, want *Error", err)
			}
			if cerr.Kind != KindMalformedResponse {
				t.Errorf("error kind = %q, want %q", cerr.Kind, KindMalformedResponse)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL, 150*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), "test prompt")
	elapsed := time.Since(start)

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("Complete() error type = %T, want *Error", err)
	}
	if cerr.Kind != KindTimeout {
		t.Errorf("error kind = %q, want %q", cerr.Kind, KindTimeout)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Complete() took %s, should respect the configured bound", elapsed)
	}
}

func TestCompleteConnectionFailure(t *testing.T) {
	// Grab a port that is guaranteed closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, time.Second)
	_, err := client.Complete(context.Background(), "test prompt")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("Complete() error type = %T, want *Error", err)
	}
	if cerr.Kind != KindConnectionFailure {
		t.Errorf("error kind = %q, want %q", cerr.Kind, KindConnectionFailure)
	}
}
