// Package htmlsource works on serialized HTML: it collects element facts
// without a live browser and cleans DOM snapshots for the run artifacts.
package htmlsource

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"bug-reproducer/internal/domain/dom"
	"bug-reproducer/internal/domain/entity"
)

// Nodes collects the facts of every allow-listed element in document order.
func Nodes(rawHTML string) ([]entity.RawNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var nodes []entity.RawNode
	doc.Find(dom.InteractiveSelector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, rawNode(s))
	})
	return nodes, nil
}

// Elements is Nodes followed by classification.
func Elements(rawHTML string) ([]entity.PageElement, error) {
	nodes, err := Nodes(rawHTML)
	if err != nil {
		return nil, err
	}
	return dom.Extract(nodes), nil
}

func rawNode(s *goquery.Selection) entity.RawNode {
	tag := goquery.NodeName(s)
	editable, hasEditable := s.Attr("contenteditable")

	n := entity.RawNode{
		Tag:             tag,
		ID:              s.AttrOr("id", ""),
		Classes:         strings.Fields(s.AttrOr("class", "")),
		Text:            nodeText(s, tag),
		AriaLabel:       s.AttrOr("aria-label", ""),
		Placeholder:     s.AttrOr("placeholder", ""),
		Role:            s.AttrOr("role", ""),
		Type:            s.AttrOr("type", ""),
		TabIndex:        s.AttrOr("tabindex", ""),
		HasClickHandler: s.Is("[onclick]"),
		ContentEditable: hasEditable && !strings.EqualFold(editable, "false"),
		Hidden:          hidden(s),
	}
	if len(s.Nodes) > 0 {
		n.Path = path(s.Nodes[0])
	}
	return n
}

func nodeText(s *goquery.Selection, tag string) string {
	switch tag {
	case "input":
		return s.AttrOr("value", "")
	case "select":
		if opt := s.Find("option[selected]").First(); opt.Length() > 0 {
			return opt.Text()
		}
		return s.Find("option").First().Text()
	}
	return s.Text()
}

// hidden approximates computed visibility from markup: the hidden attribute
// and inline styles on the element or any ancestor.
func hidden(s *goquery.Selection) bool {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if _, ok := cur.Attr("hidden"); ok {
			return true
		}
		style := strings.ReplaceAll(strings.ToLower(cur.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") ||
			strings.Contains(style, "visibility:hidden") ||
			strings.Contains(style, "opacity:0;") ||
			strings.HasSuffix(style, "opacity:0") {
			return true
		}
	}
	return false
}

func path(n *html.Node) []entity.PathSegment {
	var segs []entity.PathSegment
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		index := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				index++
			}
		}
		segs = append([]entity.PathSegment{{Tag: cur.Data, Index: index}}, segs...)
	}
	return segs
}
