package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/mocks"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: `{"thought":"t","action":{"type":"wait"},"status":"in_progress"}`,
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, msg.Content, result.Content)
}

func TestConvertResponseMessage_ReasoningFallback(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:             "assistant",
		ReasoningContent: "thinking out loud",
	}

	assert.Equal(t, "thinking out loud", convertResponseMessage(msg).Content)
}

func TestConvertMessages(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "You reproduce bugs."},
		{Role: entity.RoleUser, Content: "Step 1"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 2)
	assert.Equal(t, "system", result[0].Role)
	assert.Equal(t, "You reproduce bugs.", result[0].Content)
	assert.Equal(t, "user", result[1].Role)
}

func completionServer(t *testing.T, status int, reply string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChat_JSONMode(t *testing.T) {
	var seen map[string]any
	srv := completionServer(t, http.StatusOK, `{"status":"reproduced"}`, &seen)

	adapter := NewOpenRouterAdapter(Config{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: srv.URL,
		Logger:  mocks.NopLogger{},
	})

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages:    []entity.Message{{Role: entity.RoleUser, Content: "next action?"}},
		Temperature: 0.2,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"reproduced"}`, resp.Message.Content)

	assert.Equal(t, "test-model", seen["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, seen["response_format"])
	assert.InDelta(t, 0.2, seen["temperature"], 0.001)
}

func TestChat_WithoutJSONMode(t *testing.T) {
	var seen map[string]any
	srv := completionServer(t, http.StatusOK, "plain", &seen)

	adapter := NewOpenRouterAdapter(Config{APIKey: "test-key", Model: "m", BaseURL: srv.URL})

	_, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, seen, "response_format")
}

func TestChat_APIError(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, "", nil)

	adapter := NewOpenRouterAdapter(Config{APIKey: "test-key", Model: "m", BaseURL: srv.URL})

	_, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
