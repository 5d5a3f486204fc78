package htmlsource

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// StripEventHandlers drops on* attributes.
	StripEventHandlers bool
	MaxOutputSize      int
}

// DefaultCleanConfig keeps the document readable for a human reviewing a
// failed run: markup and accessibility attributes stay, executable and
// decorative content goes.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe", "link", "meta",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "nonce", "integrity",
	},
	StripEventHandlers: true,
	MaxOutputSize:      2_000_000,
}

var errNoDocument = errors.New("document has no <html> element")

// CleanSnapshot parses a serialized DOM and renders it back without the
// configured tags, attributes and comments.
func CleanSnapshot(rawHTML string, cfg *CleanConfig) (string, error) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := findElement(doc, "html")
	if root == nil {
		return "", errNoDocument
	}

	cleanNode(root, cfg)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	if err := html.Render(&sb, root); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return truncate(sb.String(), cfg.MaxOutputSize), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *CleanConfig) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, cfg.TagsToRemove...):
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			c.Attr = keepAttributes(c.Attr, cfg)
			cleanNode(c, cfg)
		}
		c = next
	}
}

func keepAttributes(attrs []html.Attribute, cfg *CleanConfig) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if isOneOf(attr.Key, cfg.AttrsToRemove...) {
			continue
		}
		if cfg.StripEventHandlers && strings.HasPrefix(attr.Key, "on") {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize] + "\n<!-- snapshot truncated -->"
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
