// Package extension defines every node and mark type a page document may
// hold: its schema entry, how it is recognised in HTML and how it renders.
package extension

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/eykd/pagemark-go/internal/doc"
)

// ParseRule recognises an HTML element.
type ParseRule struct {
	Tag      string
	Has      []string          // attributes that must be present
	Equals   map[string]string // attributes that must hold exact values
	GetAttrs func(el *html.Node) doc.Attrs
}

// Matches reports whether el satisfies the rule.
func (r ParseRule) Matches(el *html.Node) bool {
	if el.Type != html.ElementNode || el.Data != r.Tag {
		return false
	}
	for _, key := range r.Has {
		if _, ok := Attr(el, key); !ok {
			return false
		}
	}
	for key, want := range r.Equals {
		if v, ok := Attr(el, key); !ok || v != want {
			return false
		}
	}
	return true
}

// Node binds a node type to its schema entry and HTML form.
type Node struct {
	Type  doc.NodeType
	Spec  doc.NodeSpec
	Parse []ParseRule
	// Render builds the element tree for n and returns it together with the
	// element that receives n's children (nil for atoms).
	Render func(n *doc.Node) (dom, hole *html.Node)
}

// Mark binds a mark type to its schema entry and HTML form.
type Mark struct {
	Type   doc.MarkType
	Spec   doc.MarkSpec
	Parse  []ParseRule
	Render func(m doc.Mark) (dom, hole *html.Node)
}

// Set is an ordered collection of extensions. Earlier entries win when
// several parse rules match the same element.
type Set struct {
	Nodes []Node
	Marks []Mark
}

// Schema builds the document schema for the set.
func (s Set) Schema() *doc.Schema {
	nodes := make(map[doc.NodeType]doc.NodeSpec, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes[n.Type] = n.Spec
	}
	marks := make(map[doc.MarkType]doc.MarkSpec, len(s.Marks))
	for _, m := range s.Marks {
		marks[m.Type] = m.Spec
	}
	return doc.NewSchema(nodes, marks)
}

// Node returns the extension for t.
func (s Set) Node(t doc.NodeType) (Node, bool) {
	for _, n := range s.Nodes {
		if n.Type == t {
			return n, true
		}
	}
	return Node{}, false
}

// Mark returns the extension for t.
func (s Set) Mark(t doc.MarkType) (Mark, bool) {
	for _, m := range s.Marks {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

// MatchNode finds the first node extension with a rule matching el.
func (s Set) MatchNode(el *html.Node) (Node, ParseRule, bool) {
	for _, n := range s.Nodes {
		for _, r := range n.Parse {
			if r.Matches(el) {
				return n, r, true
			}
		}
	}
	return Node{}, ParseRule{}, false
}

// MatchMark finds the first mark extension with a rule matching el.
func (s Set) MatchMark(el *html.Node) (Mark, ParseRule, bool) {
	for _, m := range s.Marks {
		for _, r := range m.Parse {
			if r.Matches(el) {
				return m, r, true
			}
		}
	}
	return Mark{}, ParseRule{}, false
}

// Default returns the full extension set used by pagemark documents.
// Auxiliary page blocks come before the starter blocks so that, for
// example, <header> never falls through to a generic rule.
func Default() Set {
	return Set{
		Nodes: []Node{
			Page(),
			Header(),
			Footer(),
			Watermark(),
			Paragraph(),
			Heading(),
			BulletList(),
			OrderedList(),
			ListItem(),
			Blockquote(),
			CodeBlock(),
			Table(),
			TableRow(),
			TableCell(),
			Image(),
			HardBreak(),
		},
		Marks: []Mark{
			Bold(),
			Italic(),
			Underline(),
			Strike(),
			Code(),
			Link(),
			TextStyle(),
			Style(),
		},
	}
}

// Attr returns an element attribute.
func Attr(el *html.Node, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// TextContent returns the visible text below el.
func TextContent(el *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(el)
	return strings.TrimSpace(b.String())
}

// element builds an element with attributes given as key/value pairs.
// Pairs with an empty value are omitted.
func element(tag string, kv ...string) *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		el.Attr = append(el.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return el
}

// simple builds a container extension rendered as one element.
func simple(t doc.NodeType, tag string, spec doc.NodeSpec, extra ...string) Node {
	rules := []ParseRule{{Tag: tag}}
	for _, alt := range extra {
		rules = append(rules, ParseRule{Tag: alt})
	}
	return Node{
		Type:  t,
		Spec:  spec,
		Parse: rules,
		Render: func(*doc.Node) (*html.Node, *html.Node) {
			el := element(tag)
			return el, el
		},
	}
}

// simpleMark builds a mark rendered as one wrapping element.
func simpleMark(t doc.MarkType, tag string, extra ...string) Mark {
	rules := []ParseRule{{Tag: tag}}
	for _, alt := range extra {
		rules = append(rules, ParseRule{Tag: alt})
	}
	return Mark{
		Type:  t,
		Parse: rules,
		Render: func(doc.Mark) (*html.Node, *html.Node) {
			el := element(tag)
			return el, el
		},
	}
}

// ParseStyle splits a CSS declaration list into a property map.
func ParseStyle(style string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		key, val, ok := strings.Cut(decl, ":")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if ok && key != "" && val != "" {
			out[key] = val
		}
	}
	return out
}

// FormatStyle joins a property map into a declaration list with keys in
// sorted order.
func FormatStyle(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+props[k])
	}
	return strings.Join(parts, "; ")
}
