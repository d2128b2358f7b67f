package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &OpenAIProvider{
		client: newOpenAIClient("test-key", server.URL+"/v1"),
		model:  "gpt-4o-mini",
	}
}

func writeCompletion(w http.ResponseWriter, content string, finish openai.FinishReason) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 64, "completion_tokens": 12, "total_tokens": 76},
	})
}

func TestOpenAIProvider_ForwardsConversation(t *testing.T) {
	var got openai.ChatCompletionRequest
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "Patch within 30 days for SI.L1-3.14.1.", openai.FinishReasonStop)
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "You help small contractors answer CMMC questions.",
		Messages: []Message{
			{Role: RoleUser, Content: "How fast must we patch?"},
			{Role: RoleAssistant, Content: "Promptly, per SI.L1-3.14.1."},
			{Role: RoleUser, Content: "Give me a number."},
		},
		MaxTokens: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 200, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 4)
	var roles []string
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "You help small contractors answer CMMC questions.", got.Messages[0].Content)

	assert.Equal(t, "Patch within 30 days for SI.L1-3.14.1.", resp.Content)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, Usage{InputTokens: 64, OutputTokens: 12, TotalTokens: 76}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)
}

func TestOpenAIProvider_LengthStop(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Federal Contract Information is", openai.FinishReasonLength)
	})

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Define FCI"}}})
	require.NoError(t, err)
	assert.Equal(t, "max_tokens", resp.StopReason)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[]}`))
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var invalid *ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid), "err = %v", err)
}

func TestOpenAIProvider_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		rateLimit bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"tokens","message":"slow down","code":"rate_limit_exceeded"}}`, true},
		{"server error", http.StatusInternalServerError, `{"error":{"type":"server_error","message":"boom"}}`, false},
		{"gateway html", http.StatusBadGateway, `<html>bad gateway</html>`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
			require.Error(t, err)

			var rl *ErrRateLimit
			assert.Equal(t, tc.rateLimit, errors.As(err, &rl))

			var ext *ErrExternalService
			require.True(t, errors.As(err, &ext), "err = %T", err)
			assert.Equal(t, "openai", ext.Service)
			assert.Equal(t, tc.status, ext.StatusCode)
		})
	}
}

func TestOpenAIProvider_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := &OpenAIProvider{client: newOpenAIClient("test-key", url+"/v1"), model: "gpt-4o-mini"}
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var unavailable *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable), "err = %T", err)
}

func TestNewOpenAIProvider_KeepsModel(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://example.invalid/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}
