package entity

import (
	"encoding/json"
	"strings"
)

// PathSegment is one level of an element's ancestor chain: the tag name and
// its 1-based position among same-tag siblings.
type PathSegment struct {
	Tag   string `json:"tag"`
	Index int    `json:"index"`
}

// RawNode holds the facts gathered from a DOM node before classification.
type RawNode struct {
	Tag             string        `json:"tag"`
	ID              string        `json:"id"`
	Classes         []string      `json:"classes"`
	Text            string        `json:"text"`
	AriaLabel       string        `json:"ariaLabel"`
	Placeholder     string        `json:"placeholder"`
	Role            string        `json:"role"`
	Type            string        `json:"type"`
	TabIndex        string        `json:"tabIndex"`
	HasClickHandler bool          `json:"hasClickHandler"`
	ContentEditable bool          `json:"contentEditable"`
	Hidden          bool          `json:"hidden"`
	Path            []PathSegment `json:"path"`
}

type PageElement struct {
	Text         string       `json:"text"`
	Role         string       `json:"role"`
	Locator      string       `json:"locator"`
	Clickable    bool         `json:"clickable"`
	SelectorHint SelectorHint `json:"selectorHint"`
	TagName      string       `json:"tagName"`
}

// SelectorHint names an element in two complementary ways. Either part may be
// empty. On the wire it travels as a single string in the
// `<structural> or text="<text>"` form that language models read and echo back.
type SelectorHint struct {
	Structural string
	Text       string
}

const hintSeparator = " or "

func (h SelectorHint) IsZero() bool {
	return h.Structural == "" && h.Text == ""
}

func (h SelectorHint) String() string {
	switch {
	case h.Structural != "" && h.Text != "":
		return h.Structural + hintSeparator + textHint(h.Text)
	case h.Text != "":
		return textHint(h.Text)
	default:
		return h.Structural
	}
}

func (h SelectorHint) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *SelectorHint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*h = ParseSelectorHint(s)
	return nil
}

// ParseSelectorHint reverses String. Anything that is not a text hint is kept
// as the structural part.
func ParseSelectorHint(s string) SelectorHint {
	s = strings.TrimSpace(s)
	if s == "" {
		return SelectorHint{}
	}
	if i := strings.Index(s, hintSeparator+`text="`); i >= 0 {
		if text, ok := parseTextHint(s[i+len(hintSeparator):]); ok {
			return SelectorHint{Structural: strings.TrimSpace(s[:i]), Text: text}
		}
	}
	if text, ok := parseTextHint(s); ok {
		return SelectorHint{Text: text}
	}
	return SelectorHint{Structural: s}
}

func textHint(text string) string {
	return `text="` + strings.ReplaceAll(text, `"`, `\"`) + `"`
}

func parseTextHint(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, `text="`) || !strings.HasSuffix(s, `"`) || len(s) < len(`text=""`) {
		return "", false
	}
	inner := s[len(`text="`) : len(s)-1]
	return strings.ReplaceAll(inner, `\"`, `"`), true
}
