// Package codec converts page documents to and from HTML, and imports
// Markdown into paged documents.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/extension"
)

// Codec parses and renders documents for one extension set.
type Codec struct {
	set    extension.Set
	schema *doc.Schema
}

// New returns a codec for set.
func New(set extension.Set) *Codec {
	return &Codec{set: set, schema: set.Schema()}
}

// Default returns a codec for the default extension set.
func Default() *Codec { return New(extension.Default()) }

// Schema returns the schema documents built by this codec use.
func (c *Codec) Schema() *doc.Schema { return c.schema }

// Extensions returns the codec's extension set.
func (c *Codec) Extensions() extension.Set { return c.set }

// ParseHTML reads an HTML document or fragment into a new document.
func (c *Codec) ParseHTML(r io.Reader) (*doc.Document, error) {
	root, err := c.ParseContent(r)
	if err != nil {
		return nil, err
	}
	d, err := doc.New(c.schema, root)
	if err != nil {
		return nil, fmt.Errorf("building document: %w", err)
	}
	return d, nil
}

// ParseContent reads HTML into a detached root description.
func (c *Codec) ParseContent(r io.Reader) (doc.Content, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return doc.Content{}, fmt.Errorf("parse html: %w", err)
	}
	body := findBody(tree)
	if body == nil {
		body = tree
	}
	root := doc.Elem(doc.TypeDoc, nil, c.blocks(body, doc.TypeDoc)...)
	return c.fill(root), nil
}

// fill gives every required-content container an empty paragraph so the
// result satisfies the schema.
func (c *Codec) fill(n doc.Content) doc.Content {
	for i := range n.Children {
		n.Children[i] = c.fill(n.Children[i])
	}
	if len(n.Children) == 0 && c.schema.RequiresContent(n.Type) {
		switch {
		case c.schema.Allows(n.Type, doc.TypeParagraph):
			n.Children = []doc.Content{doc.Elem(doc.TypeParagraph, nil)}
		case n.Type == doc.TypeTable:
			n.Children = []doc.Content{c.fill(doc.Elem(doc.TypeTableRow, nil))}
		case n.Type == doc.TypeTableRow:
			n.Children = []doc.Content{c.fill(doc.Elem(doc.TypeTableCell, nil))}
		case n.Type == doc.TypeBulletList, n.Type == doc.TypeOrderedList:
			n.Children = []doc.Content{c.fill(doc.Elem(doc.TypeListItem, nil))}
		}
	}
	return n
}

// blocks parses the children of el as block content of a parent node of
// type parent. Stray inline content is wrapped in paragraphs; unknown
// elements are transparent.
func (c *Codec) blocks(el *html.Node, parent doc.NodeType) []doc.Content {
	var out []doc.Content
	var pending []*html.Node
	flush := func() {
		if len(pending) == 0 {
			return
		}
		var inline []doc.Content
		for _, n := range pending {
			inline = append(inline, c.inline(n, nil)...)
		}
		pending = nil
		inline = normalizeText(inline)
		if len(inline) > 0 && c.schema.Allows(parent, doc.TypeParagraph) {
			out = append(out, doc.Elem(doc.TypeParagraph, nil, inline...))
		}
	}

	for n := el.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				pending = append(pending, n)
			}
			continue
		case html.ElementNode:
		default:
			continue
		}
		ext, rule, ok := c.set.MatchNode(n)
		if !ok {
			if _, _, isMark := c.set.MatchMark(n); isMark {
				pending = append(pending, n)
				continue
			}
			flush()
			out = append(out, c.blocks(n, parent)...)
			continue
		}
		if ext.Spec.Inline {
			pending = append(pending, n)
			continue
		}
		flush()
		if !c.schema.Allows(parent, ext.Type) {
			// Unwrap content the parent cannot hold directly.
			out = append(out, c.blocks(n, parent)...)
			continue
		}
		out = append(out, c.node(n, ext, rule))
	}
	flush()
	return out
}

// node builds content for an element matched by ext.
func (c *Codec) node(el *html.Node, ext extension.Node, rule extension.ParseRule) doc.Content {
	var attrs doc.Attrs
	if rule.GetAttrs != nil {
		attrs = rule.GetAttrs(el)
	}
	n := doc.Content{Type: ext.Type, Attrs: attrs}
	switch {
	case ext.Spec.Content == "":
	case ext.Spec.Content == "text*":
		if text := rawText(el); text != "" {
			n.Children = []doc.Content{doc.Text(text)}
		}
	case strings.HasPrefix(ext.Spec.Content, "inline"):
		var inline []doc.Content
		for ch := el.FirstChild; ch != nil; ch = ch.NextSibling {
			inline = append(inline, c.inline(ch, nil)...)
		}
		n.Children = normalizeText(inline)
	default:
		n.Children = c.blocks(el, ext.Type)
	}
	return n
}

// inline parses el's children (or el itself, for text and mark elements)
// as inline content carrying marks.
func (c *Codec) inline(el *html.Node, marks []doc.Mark) []doc.Content {
	switch el.Type {
	case html.TextNode:
		return []doc.Content{doc.Text(el.Data, marks...)}
	case html.ElementNode:
	default:
		return nil
	}
	if ext, _, ok := c.set.MatchNode(el); ok && ext.Spec.Inline {
		return []doc.Content{{Type: ext.Type}}
	}
	if m, rule, ok := c.set.MatchMark(el); ok {
		var attrs doc.Attrs
		if rule.GetAttrs != nil {
			attrs = rule.GetAttrs(el)
		}
		marks = append(append([]doc.Mark(nil), marks...), doc.Mark{Type: m.Type, Attrs: attrs})
	}
	var out []doc.Content
	for n := el.FirstChild; n != nil; n = n.NextSibling {
		out = append(out, c.inline(n, marks)...)
	}
	return out
}

var spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

// normalizeText collapses whitespace, drops empty runs and joins adjacent
// runs with identical marks.
func normalizeText(in []doc.Content) []doc.Content {
	var out []doc.Content
	for _, n := range in {
		if n.Type == doc.TypeText {
			n.Text = spaceRun.ReplaceAllString(n.Text, " ")
			if n.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Type == doc.TypeText && sameMarks(out[last].Marks, n.Marks) {
				out[last].Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return trimEnds(out)
}

// trimEnds strips whitespace at the start and end of a block's text.
func trimEnds(in []doc.Content) []doc.Content {
	if len(in) > 0 && in[0].Type == doc.TypeText {
		in[0].Text = strings.TrimLeft(in[0].Text, " ")
	}
	if last := len(in) - 1; last >= 0 && in[last].Type == doc.TypeText {
		in[last].Text = strings.TrimRight(in[last].Text, " ")
	}
	out := in[:0]
	for _, n := range in {
		if n.Type == doc.TypeText && n.Text == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func sameMarks(a, b []doc.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func rawText(el *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(el)
	return b.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// RenderHTML writes the document's top-level blocks, one per line.
func (c *Codec) RenderHTML(w io.Writer, d *doc.Document) error {
	for _, n := range d.Root().Children() {
		dom, err := c.render(n)
		if err != nil {
			return err
		}
		if err := html.Render(w, dom); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders the document to a string.
func (c *Codec) RenderString(d *doc.Document) (string, error) {
	var buf bytes.Buffer
	if err := c.RenderHTML(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Codec) render(n *doc.Node) (*html.Node, error) {
	if n.IsText() {
		return c.renderText(n)
	}
	ext, ok := c.set.Node(n.Type())
	if !ok {
		return nil, fmt.Errorf("%w: %s", doc.ErrUnknownType, n.Type())
	}
	dom, hole := ext.Render(n)
	if hole == nil {
		return dom, nil
	}
	for _, child := range n.Children() {
		el, err := c.render(child)
		if err != nil {
			return nil, err
		}
		hole.AppendChild(el)
	}
	return dom, nil
}

func (c *Codec) renderText(n *doc.Node) (*html.Node, error) {
	out := &html.Node{Type: html.TextNode, Data: n.Text()}
	marks := n.Marks()
	// The first mark is the outermost element.
	for i := len(marks) - 1; i >= 0; i-- {
		ext, ok := c.set.Mark(marks[i].Type)
		if !ok {
			return nil, fmt.Errorf("%w: mark %s", doc.ErrUnknownType, marks[i].Type)
		}
		dom, hole := ext.Render(marks[i])
		hole.AppendChild(out)
		out = dom
	}
	return out, nil
}
