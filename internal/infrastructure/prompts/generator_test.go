package prompts

import (
	"strings"
	"testing"
)

func TestGenerateDecisionPrompt(t *testing.T) {
	data := DecisionPromptData{
		BugDescription: "Cart stays empty after adding an item",
		Step:           2,
		URL:            "http://shop.local/",
		Title:          "Shop",
		Elements: []ElementInfo{
			{Text: "Add to Cart", Role: "button", SelectorHint: `text="Add to Cart"`},
			{Role: "a", SelectorHint: "#logo"},
		},
		Actions: []ActionInfo{
			{Type: "click", Selector: `text="Shoes"`},
			{Type: "input", Selector: "#q", Text: "red"},
		},
		ConsoleErrors: []string{"TypeError: cart is undefined"},
	}

	result, err := GenerateDecisionPrompt(DecisionPrompt, data)
	if err != nil {
		t.Fatalf("GenerateDecisionPrompt failed: %v", err)
	}

	for _, want := range []string{
		"Cart stays empty after adding an item",
		"STEP 2",
		"URL: http://shop.local/",
		`- [button] "Add to Cart" selectorHint: text="Add to Cart"`,
		"- [a] (no text) selectorHint: #logo",
		`- click selector: text="Shoes"`,
		`- input selector: #q text: "red"`,
		"- TypeError: cart is undefined",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("prompt should contain %q\n%s", want, result)
		}
	}
}

func TestGenerateDecisionPromptEmptyLists(t *testing.T) {
	result, err := GenerateDecisionPrompt(DecisionPrompt, DecisionPromptData{BugDescription: "x", Step: 1})
	if err != nil {
		t.Fatalf("GenerateDecisionPrompt failed: %v", err)
	}

	if !strings.Contains(result, "(none yet)") {
		t.Error("empty history should be rendered explicitly")
	}
}

func TestGenerateDecisionPromptInvalidTemplate(t *testing.T) {
	_, err := GenerateDecisionPrompt(`Test {{.InvalidField}}`, DecisionPromptData{})
	if err == nil {
		t.Error("Expected error for invalid template, got nil")
	}
}

func TestSystemPromptDescribesReplyFormat(t *testing.T) {
	for _, want := range []string{`"thought"`, `"action"`, `"status"`, `"reason"`} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("system prompt should mention %s", want)
		}
	}
}
