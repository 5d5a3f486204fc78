// Package langchain serves LLMPort through any langchaingo model, which is
// how local Ollama models and plain OpenAI endpoints are reached.
package langchain

import (
	"context"
	"errors"
	"fmt"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ output.LLMPort = (*Adapter)(nil)

type Adapter struct {
	model  llms.Model
	logger output.LoggerPort
}

func NewAdapter(model llms.Model, logger output.LoggerPort) *Adapter {
	return &Adapter{model: model, logger: logger}
}

// NewOllama connects to an Ollama server. An empty serverURL uses the
// library default.
func NewOllama(modelName, serverURL string, logger output.LoggerPort) (*Adapter, error) {
	opts := []ollama.Option{ollama.WithModel(modelName)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama model: %w", err)
	}
	return NewAdapter(model, logger), nil
}

func NewOpenAI(modelName, apiKey, baseURL string, logger output.LoggerPort) (*Adapter, error) {
	opts := []openai.Option{openai.WithModel(modelName), openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai model: %w", err)
	}
	return NewAdapter(model, logger), nil
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	a.logger.Debug("Content generated", "stopReason", choice.StopReason, "length", len(choice.Content))

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: choice.Content},
	}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		out = append(out, llms.TextParts(messageType(msg.Role), msg.Content))
	}
	return out
}

func messageType(role entity.MessageRole) llms.ChatMessageType {
	switch role {
	case entity.RoleSystem:
		return llms.ChatMessageTypeSystem
	case entity.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
