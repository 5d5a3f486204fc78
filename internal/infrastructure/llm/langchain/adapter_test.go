package langchain

import (
	"context"
	"errors"
	"testing"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply    *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.reply, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestChat(t *testing.T) {
	model := &fakeModel{reply: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"status":"failed","reason":"no cart"}`, StopReason: "stop"}},
	}}
	adapter := NewAdapter(model, mocks.NopLogger{})

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "system prompt"},
			{Role: entity.RoleUser, Content: "observation"},
			{Role: entity.RoleAssistant, Content: "earlier reply"},
		},
		Temperature: 0.5,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAssistant, resp.Message.Role)
	assert.Equal(t, `{"status":"failed","reason":"no cart"}`, resp.Message.Content)

	require.Len(t, model.messages, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, llms.TextContent{Text: "observation"}, model.messages[1].Parts[0])

	assert.True(t, model.options.JSONMode)
	assert.InDelta(t, 0.5, model.options.Temperature, 0.0001)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  string
	}{
		{"backend error", &fakeModel{err: errors.New("connection refused")}, "connection refused"},
		{"empty response", &fakeModel{reply: &llms.ContentResponse{}}, "no choices"},
		{"nil response", &fakeModel{}, "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewAdapter(tt.model, mocks.NopLogger{})
			_, err := adapter.Chat(context.Background(), output.ChatRequest{
				Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
