package rod

import (
	"fmt"
	"strings"
)

// xpathLiteral quotes s for use inside an XPath expression. XPath 1.0 has no
// escape sequences, so strings holding both quote kinds are built with
// concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	args := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

func normalizedEquals(expr, text string) string {
	return fmt.Sprintf("normalize-space(%s)=%s", expr, xpathLiteral(strings.Join(strings.Fields(text), " ")))
}

// clickableByText matches clickable elements whose visible text or
// accessible name equals text.
func clickableByText(text string) string {
	match := fmt.Sprintf("[%s or %s or %s]",
		normalizedEquals(".", text),
		normalizedEquals("@aria-label", text),
		normalizedEquals("@value", text),
	)
	return "//button" + match +
		" | //a" + match +
		" | //input" + match +
		" | //summary" + match +
		" | //label" + match +
		" | //*[@role='button' or @role='link' or @role='tab' or @role='menuitem' or @role='option']" + match
}

// anyByText matches the innermost element holding text.
func anyByText(text string) string {
	lit := xpathLiteral(strings.Join(strings.Fields(text), " "))
	return fmt.Sprintf("//body//*[contains(normalize-space(.), %s) and not(*[contains(normalize-space(.), %s)])]", lit, lit)
}

// fieldByLabel matches form fields by placeholder, aria-label, name or an
// associated <label>.
func fieldByLabel(label string) string {
	field := "*[self::input or self::textarea or self::select or @contenteditable='true']"
	return fmt.Sprintf("//%s[%s or %s or %s]", field,
		normalizedEquals("@placeholder", label),
		normalizedEquals("@aria-label", label),
		normalizedEquals("@name", label),
	) +
		fmt.Sprintf(" | //%s[@id=//label[%s]/@for]", field, normalizedEquals(".", label)) +
		fmt.Sprintf(" | //label[%s]//%s", normalizedEquals(".", label), field)
}
