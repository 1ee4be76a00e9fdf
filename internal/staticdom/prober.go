// Package staticdom probes server-rendered markup for testid elements. It
// approximates the browser-side probe from attributes, class lists, and
// inline styles only: there is no layout engine server-side, so geometry is
// reported unknown and never counts as zero-size.
package staticdom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"tidgate/internal/classify"
)

// Prober walks a parsed HTML document looking for data-testid attributes.
type Prober struct {
	root *html.Node
}

// New parses the document once; Probe calls then walk the in-memory tree.
func New(r io.Reader) (*Prober, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return &Prober{root: root}, nil
}

// Probe locates the first element carrying the literal data-testid value and
// snapshots it. Display and visibility inherit from ancestors the way a
// browser would compute them for hidden containers: an ancestor with the
// hidden attribute or inline display:none hides every descendant.
func (p *Prober) Probe(testidValue string) (*classify.Probe, error) {
	if testidValue == "" {
		return nil, fmt.Errorf("empty testid value")
	}
	var chain []*html.Node
	node := findTestID(p.root, testidValue, &chain)
	if node == nil {
		return &classify.Probe{Found: false}, nil
	}

	style := inlineStyle(node)
	probe := &classify.Probe{
		Found:      true,
		Attached:   true, // parsed out of the document, by definition in-tree
		HiddenAttr: hasAttr(node, "hidden"),
		AriaHidden: attrValue(node, "aria-hidden"),
		Classes:    strings.Fields(attrValue(node, "class")),
		Display:    style["display"],
		Visibility: style["visibility"],
		Opacity:    style["opacity"],
		Position:   style["position"],
		Width:      -1,
		Height:     -1,
	}

	// Walk ancestors for inherited hiding. chain holds the path from root
	// down to the node itself.
	for _, anc := range chain[:len(chain)-1] {
		if anc.Type != html.ElementNode {
			continue
		}
		ancStyle := inlineStyle(anc)
		if hasAttr(anc, "hidden") || ancStyle["display"] == "none" {
			probe.Display = "none"
		}
		if probe.Visibility == "" && ancStyle["visibility"] != "" {
			probe.Visibility = ancStyle["visibility"]
		}
	}
	return probe, nil
}

// findTestID depth-first searches for the element, recording the node path.
func findTestID(n *html.Node, value string, chain *[]*html.Node) *html.Node {
	*chain = append(*chain, n)
	if n.Type == html.ElementNode && attrValue(n, "data-testid") == value {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTestID(c, value, chain); found != nil {
			return found
		}
	}
	*chain = (*chain)[:len(*chain)-1]
	return nil
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// inlineStyle parses a style attribute into property/value pairs. Malformed
// declarations are skipped; this is a best-effort read of author intent, not
// a CSS engine.
func inlineStyle(n *html.Node) map[string]string {
	out := make(map[string]string)
	raw := attrValue(n, "style")
	if raw == "" {
		return out
	}
	for _, decl := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
