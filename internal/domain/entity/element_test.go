package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorHint_String(t *testing.T) {
	tests := []struct {
		name string
		hint SelectorHint
		want string
	}{
		{"both parts", SelectorHint{Structural: "div.card", Text: "Add to Cart"}, `div.card or text="Add to Cart"`},
		{"text only", SelectorHint{Text: "Checkout"}, `text="Checkout"`},
		{"structural only", SelectorHint{Structural: "#email"}, "#email"},
		{"empty", SelectorHint{}, ""},
		{"quoted text", SelectorHint{Text: `Say "hi"`}, `text="Say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hint.String())
		})
	}
}

func TestParseSelectorHint(t *testing.T) {
	tests := []struct {
		in   string
		want SelectorHint
	}{
		{`div.card or text="Add to Cart"`, SelectorHint{Structural: "div.card", Text: "Add to Cart"}},
		{`text="Checkout"`, SelectorHint{Text: "Checkout"}},
		{"#email", SelectorHint{Structural: "#email"}},
		{`text="Say \"hi\""`, SelectorHint{Text: `Say "hi"`}},
		{"  ", SelectorHint{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSelectorHint(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestPageElement_SelectorHintTravelsAsString(t *testing.T) {
	el := PageElement{
		Text:         "Add to Cart",
		Role:         "button",
		Locator:      "html:nth-of-type(1) > body:nth-of-type(1) > button:nth-of-type(1)",
		Clickable:    true,
		SelectorHint: SelectorHint{Text: "Add to Cart"},
		TagName:      "button",
	}

	data, err := json.Marshal(el)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selectorHint":"text=\"Add to Cart\""`)

	var decoded PageElement
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, el, decoded)
}

func TestObservation_Clickable(t *testing.T) {
	obs := Observation{DOM: []PageElement{
		{Text: "Heading"},
		{Text: "One", Clickable: true},
		{Text: "Two", Clickable: true},
		{Text: "Three", Clickable: true},
	}}

	assert.Len(t, obs.Clickable(0), 3)
	got := obs.Clickable(2)
	require.Len(t, got, 2)
	assert.Equal(t, "One", got[0].Text)
	assert.Equal(t, "Two", got[1].Text)
}

func TestObservation_RecentConsoleErrors(t *testing.T) {
	obs := Observation{State: BrowserState{ConsoleErrors: []string{"a", "b", "c"}}}

	assert.Equal(t, []string{"b", "c"}, obs.RecentConsoleErrors(2))
	assert.Equal(t, []string{"a", "b", "c"}, obs.RecentConsoleErrors(10))
}

func TestParseSelectorHint_TextContainingSeparator(t *testing.T) {
	hint := SelectorHint{Structural: "li.menu", Text: "Tea or Coffee"}

	assert.Equal(t, hint, ParseSelectorHint(hint.String()))
}
