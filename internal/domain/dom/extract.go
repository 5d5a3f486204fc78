// Package dom turns raw DOM facts into the compact element list the decision
// policy reasons over.
package dom

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bug-reproducer/internal/domain/entity"
)

// InteractiveSelector is the allow-list of nodes worth describing. Both the
// live browser collector and the static HTML source query with it.
const InteractiveSelector = `button, a, input, select, textarea, summary, label, ` +
	`[role=button], [role=link], [role=checkbox], [role=tab], [role=menuitem], [role=option], [role=switch], ` +
	`[tabindex="0"], [contenteditable=""], [contenteditable=true], [onclick], ` +
	`h1, h2, h3, [role=alert], [role=status], [aria-live], [data-testid]`

const (
	// MaxHintTextLen bounds the text usable in a text hint.
	MaxHintTextLen = 50
	maxTextLen     = 200
)

var clickableTags = map[string]bool{
	"a":       true,
	"button":  true,
	"select":  true,
	"summary": true,
	"option":  true,
	"label":   true,
}

var clickableRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"checkbox": true,
	"tab":      true,
	"menuitem": true,
	"option":   true,
	"switch":   true,
}

var buttonInputTypes = map[string]bool{
	"button":   true,
	"submit":   true,
	"reset":    true,
	"checkbox": true,
	"radio":    true,
	"image":    true,
}

// Extract classifies nodes in document order. Hidden and malformed nodes are
// skipped, elements with neither text nor a click affordance are dropped and
// the result is unique by (locator, text).
func Extract(nodes []entity.RawNode) []entity.PageElement {
	out := make([]entity.PageElement, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		tag := strings.ToLower(strings.TrimSpace(n.Tag))
		if tag == "" || len(n.Path) == 0 || n.Hidden {
			continue
		}
		if tag == "input" && strings.EqualFold(n.Type, "hidden") {
			continue
		}

		text := Label(n)
		clickable := IsClickable(n)
		if text == "" && !clickable {
			continue
		}

		locator := Locator(n.Path)
		if locator == "" {
			continue
		}
		key := locator + "\x00" + text
		if seen[key] {
			continue
		}
		seen[key] = true

		role := strings.TrimSpace(n.Role)
		if role == "" {
			role = tag
		}

		out = append(out, entity.PageElement{
			Text:         text,
			Role:         role,
			Locator:      locator,
			Clickable:    clickable,
			SelectorHint: Hint(n, text, clickable),
			TagName:      tag,
		})
	}
	return out
}

// Label is the element's visible text, falling back to its accessible name.
func Label(n entity.RawNode) string {
	text := firstNonEmpty(n.Text, n.AriaLabel, n.Placeholder)
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxTextLen {
		text = string([]rune(text)[:maxTextLen])
	}
	return text
}

func IsClickable(n entity.RawNode) bool {
	tag := strings.ToLower(n.Tag)
	if clickableTags[tag] {
		return true
	}
	if tag == "input" && buttonInputTypes[strings.ToLower(n.Type)] {
		return true
	}
	if clickableRoles[strings.ToLower(n.Role)] {
		return true
	}
	return n.HasClickHandler || strings.TrimSpace(n.TabIndex) == "0"
}

// Locator renders an index-qualified tag path from the document root, a
// valid CSS selector that identifies the node within the current document.
func Locator(path []entity.PathSegment) string {
	parts := make([]string, 0, len(path))
	for _, seg := range path {
		tag := strings.ToLower(strings.TrimSpace(seg.Tag))
		if tag == "" || seg.Index < 1 {
			return ""
		}
		parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", tag, seg.Index))
	}
	return strings.Join(parts, " > ")
}

// Hint builds the selector hint: #id, else the first two classes, else the
// tag. Short text is attached as a text hint and, for clickable elements,
// replaces the structural part.
func Hint(n entity.RawNode, text string, clickable bool) entity.SelectorHint {
	var hint entity.SelectorHint
	switch {
	case n.ID != "" && !strings.ContainsAny(n.ID, " \t\n"):
		hint.Structural = "#" + n.ID
	case len(n.Classes) > 0:
		classes := nonEmpty(n.Classes)
		if len(classes) > 2 {
			classes = classes[:2]
		}
		if len(classes) > 0 {
			hint.Structural = strings.ToLower(n.Tag) + "." + strings.Join(classes, ".")
		} else {
			hint.Structural = strings.ToLower(n.Tag)
		}
	default:
		hint.Structural = strings.ToLower(n.Tag)
	}

	if text != "" && utf8.RuneCountInString(text) < MaxHintTextLen {
		hint.Text = text
		if clickable {
			hint.Structural = ""
		}
	}
	return hint
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
