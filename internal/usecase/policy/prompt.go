package policy

import (
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/infrastructure/prompts"
)

const (
	MaxPromptElements      = 30
	MaxPromptActions       = 5
	MaxPromptConsoleErrors = 5
)

// BuildPrompt renders the decision request. Only the presentation is
// truncated; the observation itself is left untouched.
func BuildPrompt(bugDescription string, obs entity.Observation, history entity.HistoryView) (string, error) {
	data := prompts.DecisionPromptData{
		BugDescription: bugDescription,
		Step:           obs.StepNumber,
		URL:            obs.State.URL,
		Title:          obs.State.Title,
		ConsoleErrors:  obs.RecentConsoleErrors(MaxPromptConsoleErrors),
	}

	for _, el := range obs.Clickable(MaxPromptElements) {
		data.Elements = append(data.Elements, prompts.ElementInfo{
			Text:         el.Text,
			Role:         el.Role,
			SelectorHint: el.SelectorHint.String(),
		})
	}

	for _, a := range history.RecentActions(MaxPromptActions) {
		data.Actions = append(data.Actions, prompts.ActionInfo{
			Type:     string(a.Type),
			Selector: a.Selector,
			Text:     a.Text,
			URL:      a.URL,
		})
	}

	return prompts.GenerateDecisionPrompt(prompts.DecisionPrompt, data)
}
