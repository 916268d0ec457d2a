package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	config := DefaultAnthropicConfig()
	config.BaseURL = server.URL
	client, err := NewAnthropicClient(config, "test-key")
	require.NoError(t, err)
	return client
}

func TestAnthropicClient_GenerateContent(t *testing.T) {
	var got messagesRequest
	client := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello"}],"stop_reason":"end_turn"}`))
	})

	text, err := client.GenerateContent(context.Background(), "prompt", TierAdvanced)
	require.NoError(t, err)

	assert.Equal(t, "hello", text)
	assert.Equal(t, "claude-sonnet-4-5-20250929", got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "text", got.Messages[0].Content[0].Type)
	assert.Equal(t, "prompt", got.Messages[0].Content[0].Text)
}

func TestAnthropicClient_GenerateJSON_StripsFences(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + "```json\\n{\\\"title\\\":\\\"PM\\\"}\\n```" + `"}]}`))
	})

	text, err := client.GenerateJSON(context.Background(), "prompt", TierAdvanced)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"PM"}`, text)
}

func TestAnthropicClient_APIError(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := client.GenerateContent(context.Background(), "prompt", TierAdvanced)
	require.Error(t, err)
	var apiErr *anthropic.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestAnthropicClient_NonTextContent(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	})

	_, err := client.GenerateContent(context.Background(), "prompt", TierAdvanced)
	assert.Error(t, err)
}

func TestAnthropicClient_NoRetryOnServerError(t *testing.T) {
	calls := 0
	client := newTestAnthropic(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := client.GenerateContent(context.Background(), "prompt", TierAdvanced)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultAnthropicConfig(), "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	client, err := NewClient(context.Background(), nil, "key")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	assert.Error(t, err)
}
