package action

import (
	"regexp"
	"strings"
)

type TargetKind int

const (
	TargetText TargetKind = iota
	TargetStructural
)

func (k TargetKind) String() string {
	if k == TargetStructural {
		return "structural"
	}
	return "text"
}

// Target is a selector resolved to the single strategy used to find the
// element.
type Target struct {
	Kind  TargetKind
	Value string
}

const (
	alternativeSep = " or "
	// structuralMarkers distinguish CSS selectors from plain visible text.
	structuralMarkers = "[#."
)

var (
	textSelectorRe  = regexp.MustCompile(`^text\s*=\s*(?:"(.*)"|'(.*)'|(.*))$`)
	quotedLiteralRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	// pseudoClassRe matches a pseudo-class attached to a compound selector,
	// as in button:nth-of-type(2). "Sort: Newest" does not match.
	pseudoClassRe = regexp.MustCompile(`[\w)\]]:[a-z][a-z-]*`)
	// tagChainRe matches child combinators between bare tags: ul > li.
	tagChainRe = regexp.MustCompile(`^[a-z][a-z0-9-]*(\s*>\s*[a-z][a-z0-9-]*)+$`)
)

// ResolveSelector picks one strategy for a selector as written by the
// decision policy. When alternatives are joined with " or ", the last one
// wins; surrounding quotes are stripped; text hints become text targets;
// strings that do not look like CSS are treated as visible text.
func ResolveSelector(selector string) Target {
	s := strings.TrimSpace(selector)

	if alts := splitAlternatives(s); len(alts) > 1 {
		s = strings.TrimSpace(alts[len(alts)-1])
	}
	s = strings.TrimSpace(trimQuotes(s))

	if m := textSelectorRe.FindStringSubmatch(s); m != nil {
		return Target{Kind: TargetText, Value: unescape(strings.TrimSpace(firstNonEmpty(m[1], m[2], m[3])))}
	}

	if ambiguous(s) {
		if m := quotedLiteralRe.FindStringSubmatch(s); m != nil {
			return Target{Kind: TargetText, Value: firstNonEmpty(m[1], m[2])}
		}
	}

	if !structural(s) {
		return Target{Kind: TargetText, Value: s}
	}
	return Target{Kind: TargetStructural, Value: s}
}

func structural(s string) bool {
	return strings.ContainsAny(s, structuralMarkers) || pseudoClassRe.MatchString(s) || tagChainRe.MatchString(s)
}

// splitAlternatives splits on " or " outside of quoted text.
func splitAlternatives(s string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(s[i:], alternativeSep):
			parts = append(parts, s[start:i])
			start = i + len(alternativeSep)
			i = start - 1
		}
	}
	return append(parts, s[start:])
}

func ambiguous(s string) bool {
	if strings.Contains(s, "text=") || strings.Contains(s, alternativeSep) {
		return true
	}
	return strings.Contains(s, "=") && !strings.Contains(s, "[")
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func unescape(s string) string {
	return strings.NewReplacer(`\"`, `"`, `\'`, `'`).Replace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
