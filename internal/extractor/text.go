package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hiddenTags never contribute visible text.
var hiddenTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Svg:      true,
	atom.Canvas:   true,
}

// boilerplateTags are structural regions outside the page's content.
var boilerplateTags = map[atom.Atom]bool{
	atom.Nav:    true,
	atom.Aside:  true,
	atom.Footer: true,
	atom.Header: true,
}

var boilerplateRoles = map[string]bool{
	"navigation":    true,
	"banner":        true,
	"contentinfo":   true,
	"complementary": true,
}

var boilerplateClass = regexp.MustCompile(`(?i)sidebar|navigation|menu|footer|breadcrumb`)

// blockTags start a new line of text.
var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Br: true, atom.Caption: true, atom.Dd: true, atom.Details: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Html: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.Option: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Summary: true, atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Tfoot: true,
	atom.Th: true, atom.Thead: true, atom.Tr: true, atom.Ul: true,
}

// isHidden reports whether an element never renders text.
func isHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if hiddenTags[n.DataAtom] {
		return true
	}
	if hasAttr(n, "hidden") || strings.EqualFold(getAttr(n, "aria-hidden"), "true") {
		return true
	}
	return false
}

// isBoilerplate reports whether an element is navigation, header,
// footer or sidebar content, or is hidden.
func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if isHidden(n) || boilerplateTags[n.DataAtom] {
		return true
	}
	if boilerplateRoles[strings.ToLower(getAttr(n, "role"))] {
		return true
	}
	if n.DataAtom == atom.Body || n.DataAtom == atom.Html {
		return false
	}
	return boilerplateClass.MatchString(getAttr(n, "class")) ||
		boilerplateClass.MatchString(getAttr(n, "id"))
}

// textOf returns the whitespace-collapsed text below n. With
// skipBoilerplate, boilerplate subtrees are omitted; hidden subtrees are
// always omitted.
func textOf(n *html.Node, skipBoilerplate bool) string {
	var b strings.Builder
	writeText(&b, n, skipBoilerplate)
	return collapse(b.String())
}

func writeText(b *strings.Builder, n *html.Node, skipBoilerplate bool) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if isHidden(n) || (skipBoilerplate && isBoilerplate(n)) {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.DataAtom]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c, skipBoilerplate)
	}
	if block {
		b.WriteByte(' ')
	}
}

// collapse trims s and folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr returns the value of attribute key, or "".
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// bodyOf returns the body element, or root when there is none.
func bodyOf(root *html.Node) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if found == nil {
		return root
	}
	return found
}
