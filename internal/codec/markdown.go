package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
)

// ImportOptions sets the layout of pages created from Markdown.
type ImportOptions struct {
	Size    page.Size
	Margins page.Margins
}

// ImportMarkdown parses Markdown into a paged document. Every thematic
// break (---) starts a new page.
func (c *Codec) ImportMarkdown(r io.Reader, opts ImportOptions) (*doc.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var pages [][]doc.Content
	var current []doc.Content
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*ast.ThematicBreak); ok {
			if len(current) > 0 {
				pages = append(pages, current)
			}
			current = nil
			continue
		}
		current = append(current, mdBlock(n, src)...)
	}
	if len(current) > 0 || len(pages) == 0 {
		pages = append(pages, current)
	}

	children := make([]doc.Content, 0, len(pages))
	for i, blocks := range pages {
		pg := doc.Elem(doc.TypePage, extension.PageAttrs(opts.Size, opts.Margins, i+1), blocks...)
		children = append(children, c.fill(pg))
	}
	d, err := doc.New(c.schema, doc.Elem(doc.TypeDoc, nil, children...))
	if err != nil {
		return nil, fmt.Errorf("building document: %w", err)
	}
	return d, nil
}

// mdBlock converts one block-level node.
func mdBlock(n ast.Node, src []byte) []doc.Content {
	switch node := n.(type) {
	case *ast.Heading:
		return []doc.Content{doc.Elem(doc.TypeHeading, doc.Attrs{"level": node.Level}, mdInlines(node, src, nil)...)}
	case *ast.Paragraph, *ast.TextBlock:
		return []doc.Content{doc.Elem(doc.TypeParagraph, nil, mdInlines(node, src, nil)...)}
	case *ast.List:
		t := doc.TypeBulletList
		if node.IsOrdered() {
			t = doc.TypeOrderedList
		}
		var items []doc.Content
		for li := node.FirstChild(); li != nil; li = li.NextSibling() {
			var blocks []doc.Content
			for b := li.FirstChild(); b != nil; b = b.NextSibling() {
				blocks = append(blocks, mdBlock(b, src)...)
			}
			if len(blocks) == 0 {
				blocks = []doc.Content{doc.Elem(doc.TypeParagraph, nil)}
			}
			items = append(items, doc.Elem(doc.TypeListItem, nil, blocks...))
		}
		if len(items) == 0 {
			return nil
		}
		return []doc.Content{doc.Elem(t, nil, items...)}
	case *ast.Blockquote:
		var blocks []doc.Content
		for b := node.FirstChild(); b != nil; b = b.NextSibling() {
			blocks = append(blocks, mdBlock(b, src)...)
		}
		if len(blocks) == 0 {
			return nil
		}
		return []doc.Content{doc.Elem(doc.TypeBlockquote, nil, blocks...)}
	case *ast.FencedCodeBlock:
		return []doc.Content{codeBlock(node, src, string(node.Language(src)))}
	case *ast.CodeBlock:
		return []doc.Content{codeBlock(node, src, "")}
	}
	// HTML blocks and anything unrecognised keep their text as a paragraph.
	if t := strings.TrimSpace(lineText(n, src)); t != "" {
		return []doc.Content{doc.Elem(doc.TypeParagraph, nil, doc.Text(t))}
	}
	return nil
}

func codeBlock(n ast.Node, src []byte, lang string) doc.Content {
	body := strings.TrimSuffix(lineText(n, src), "\n")
	cb := doc.Elem(doc.TypeCodeBlock, doc.Attrs{"language": lang})
	if body != "" {
		cb.Children = []doc.Content{doc.Text(body)}
	}
	return cb
}

func lineText(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// mdInlines converts the inline children of n.
func mdInlines(n ast.Node, src []byte, marks []doc.Mark) []doc.Content {
	return normalizeText(collectInlines(n, src, marks))
}

func collectInlines(n ast.Node, src []byte, marks []doc.Mark) []doc.Content {
	var out []doc.Content
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			out = append(out, doc.Text(string(node.Segment.Value(src)), marks...))
			if node.HardLineBreak() {
				out = append(out, doc.Content{Type: doc.TypeHardBreak})
			} else if node.SoftLineBreak() {
				out = append(out, doc.Text(" ", marks...))
			}
		case *ast.String:
			out = append(out, doc.Text(string(node.Value), marks...))
		case *ast.Emphasis:
			t := doc.MarkItalic
			if node.Level >= 2 {
				t = doc.MarkBold
			}
			out = append(out, collectInlines(node, src, withMark(marks, doc.Mark{Type: t}))...)
		case *ast.CodeSpan:
			out = append(out, collectInlines(node, src, withMark(marks, doc.Mark{Type: doc.MarkCode}))...)
		case *ast.Link:
			link := doc.Mark{Type: doc.MarkLink, Attrs: doc.Attrs{"href": string(node.Destination)}}
			out = append(out, collectInlines(node, src, withMark(marks, link))...)
		case *ast.AutoLink:
			url := string(node.URL(src))
			out = append(out, doc.Text(url, withMark(marks, doc.Mark{Type: doc.MarkLink, Attrs: doc.Attrs{"href": url}})...))
		default:
			// Images, raw HTML and extensions contribute their text only.
			out = append(out, collectInlines(node, src, marks)...)
		}
	}
	return out
}

func withMark(marks []doc.Mark, m doc.Mark) []doc.Mark {
	return append(append([]doc.Mark(nil), marks...), m)
}
