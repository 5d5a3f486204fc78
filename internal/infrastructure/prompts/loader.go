package prompts

import (
	_ "embed"
)

//go:embed system.txt
var SystemPrompt string

//go:embed decision.txt
var DecisionPrompt string
