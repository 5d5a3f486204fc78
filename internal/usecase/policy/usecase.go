package policy

import (
	"context"
	"fmt"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

var _ output.DecisionPolicy = (*UseCase)(nil)

const fallbackSelector = "body"

type Config struct {
	SystemPrompt string
	Temperature  float32
	JSONMode     bool
}

type UseCase struct {
	llm    output.LLMPort
	logger output.LoggerPort
	cfg    Config
}

func New(llm output.LLMPort, logger output.LoggerPort, cfg Config) *UseCase {
	return &UseCase{
		llm:    llm,
		logger: logger,
		cfg:    cfg,
	}
}

// Decide asks the model for the next step. Transport failures, unreadable
// replies and contract violations all degrade to Fallback.
func (uc *UseCase) Decide(ctx context.Context, bugDescription string, obs entity.Observation, history entity.HistoryView) entity.PolicyResponse {
	prompt, err := BuildPrompt(bugDescription, obs, history)
	if err != nil {
		return uc.fallback(obs, fmt.Errorf("render prompt: %w", err))
	}

	messages := make([]entity.Message, 0, 2)
	if uc.cfg.SystemPrompt != "" {
		messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: uc.cfg.SystemPrompt})
	}
	messages = append(messages, entity.Message{Role: entity.RoleUser, Content: prompt})

	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		Temperature: uc.cfg.Temperature,
		JSONMode:    uc.cfg.JSONMode,
	})
	if err != nil {
		return uc.fallback(obs, fmt.Errorf("llm request failed: %w", err))
	}
	if resp == nil {
		return uc.fallback(obs, fmt.Errorf("llm returned no response"))
	}

	decision, err := ParseResponse(resp.Message.Content)
	if err != nil {
		return uc.fallback(obs, err)
	}

	uc.logger.Debug("Policy decided",
		"step", obs.StepNumber,
		"action", decision.Action.String(),
		"status", decision.Status,
	)
	return decision
}

func (uc *UseCase) fallback(obs entity.Observation, cause error) entity.PolicyResponse {
	uc.logger.Warn("Policy fell back to default action", "step", obs.StepNumber, "error", cause)
	return Fallback(obs, cause)
}

// Fallback keeps the run moving: click the first clickable element, or the
// page body when there is none.
func Fallback(obs entity.Observation, cause error) entity.PolicyResponse {
	selector := fallbackSelector
	if els := obs.Clickable(1); len(els) > 0 {
		if hint := els[0].SelectorHint.String(); hint != "" {
			selector = hint
		} else if els[0].Locator != "" {
			selector = els[0].Locator
		}
	}

	action, err := entity.NewClick(selector)
	if err != nil {
		action, _ = entity.NewClick(fallbackSelector)
	}

	return entity.PolicyResponse{
		Thought: fmt.Sprintf("Falling back to a default action: %v", cause),
		Action:  action,
		Status:  entity.PolicyInProgress,
	}
}
