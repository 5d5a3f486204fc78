package prompts

import (
	"bytes"
	"text/template"
)

type ElementInfo struct {
	Text         string
	Role         string
	SelectorHint string
}

type ActionInfo struct {
	Type     string
	Selector string
	Text     string
	URL      string
}

type DecisionPromptData struct {
	BugDescription string
	Step           int
	URL            string
	Title          string
	Elements       []ElementInfo
	Actions        []ActionInfo
	ConsoleErrors  []string
}

func GenerateDecisionPrompt(baseTemplate string, data DecisionPromptData) (string, error) {
	tmpl, err := template.New("decision").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
