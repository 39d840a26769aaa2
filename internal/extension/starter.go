package extension

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
)

// Alignments accepted by the textAlign attribute.
var Alignments = []string{"left", "center", "right", "justify"}

// Paragraph is a block of inline content. Besides textAlign it keeps a raw
// style string for line and paragraph spacing.
func Paragraph() Node {
	return Node{
		Type:  doc.TypeParagraph,
		Spec:  doc.NodeSpec{Group: "block", Content: "inline*", Attrs: doc.Attrs{"textAlign": "", "style": ""}},
		Parse: []ParseRule{{Tag: "p", GetAttrs: parseBlockStyle}},
		Render: func(n *doc.Node) (*html.Node, *html.Node) {
			el := element("p", "style", blockStyle(n.Attrs()))
			return el, el
		},
	}
}

// Heading is a level 1 to 6 heading.
func Heading() Node {
	var rules []ParseRule
	for level := 1; level <= 6; level++ {
		level := level
		rules = append(rules, ParseRule{
			Tag: "h" + strconv.Itoa(level),
			GetAttrs: func(el *html.Node) doc.Attrs {
				attrs := parseBlockStyle(el)
				attrs["level"] = level
				return attrs
			},
		})
	}
	return Node{
		Type:  doc.TypeHeading,
		Spec:  doc.NodeSpec{Group: "block", Content: "inline*", Attrs: doc.Attrs{"level": 1, "textAlign": "", "style": ""}},
		Parse: rules,
		Render: func(n *doc.Node) (*html.Node, *html.Node) {
			a := n.Attrs()
			level := a.Int("level")
			if level < 1 || level > 6 {
				level = 1
			}
			el := element("h"+strconv.Itoa(level), "style", blockStyle(a))
			return el, el
		},
	}
}

func parseBlockStyle(el *html.Node) doc.Attrs {
	style, _ := Attr(el, "style")
	props := ParseStyle(style)
	attrs := doc.Attrs{}
	if align, ok := props["text-align"]; ok {
		attrs["textAlign"] = align
		delete(props, "text-align")
	}
	if len(props) > 0 {
		attrs["style"] = FormatStyle(props)
	}
	return attrs
}

func blockStyle(a doc.Attrs) string {
	var parts []string
	if align := a.String("textAlign"); align != "" {
		parts = append(parts, "text-align: "+align)
	}
	if s := a.String("style"); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

// BulletList is an unordered list.
func BulletList() Node {
	return simple(doc.TypeBulletList, "ul", doc.NodeSpec{Group: "block", Content: "listItem+"})
}

// OrderedList is a numbered list.
func OrderedList() Node {
	return simple(doc.TypeOrderedList, "ol", doc.NodeSpec{Group: "block", Content: "listItem+"})
}

// ListItem is one list entry.
func ListItem() Node {
	return simple(doc.TypeListItem, "li", doc.NodeSpec{Content: "block+"})
}

// Blockquote quotes a run of blocks.
func Blockquote() Node {
	return simple(doc.TypeBlockquote, "blockquote", doc.NodeSpec{Group: "block", Content: "block+"})
}

// CodeBlock holds preformatted text.
func CodeBlock() Node {
	return Node{
		Type: doc.TypeCodeBlock,
		Spec: doc.NodeSpec{Group: "block", Content: "text*", Attrs: doc.Attrs{"language": ""}},
		Parse: []ParseRule{{
			Tag: "pre",
			GetAttrs: func(el *html.Node) doc.Attrs {
				for c := el.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "code" {
						class, _ := Attr(c, "class")
						return doc.Attrs{"language": strings.TrimPrefix(class, "language-")}
					}
				}
				return doc.Attrs{}
			},
		}},
		Render: func(n *doc.Node) (*html.Node, *html.Node) {
			pre := element("pre")
			lang := n.Attrs().String("language")
			class := ""
			if lang != "" {
				class = "language-" + lang
			}
			code := element("code", "class", class)
			pre.AppendChild(code)
			return pre, code
		},
	}
}

// Table is a grid of rows.
func Table() Node {
	return Node{
		Type:  doc.TypeTable,
		Spec:  doc.NodeSpec{Group: "block", Content: "tableRow+", Isolating: true},
		Parse: []ParseRule{{Tag: "table"}},
		Render: func(*doc.Node) (*html.Node, *html.Node) {
			table := element("table")
			body := element("tbody")
			table.AppendChild(body)
			return table, body
		},
	}
}

// TableRow is one table row.
func TableRow() Node {
	return simple(doc.TypeTableRow, "tr", doc.NodeSpec{Content: "tableCell+"})
}

// TableCell is one table cell.
func TableCell() Node {
	return simple(doc.TypeTableCell, "td", doc.NodeSpec{Content: "block+", Isolating: true}, "th")
}

// Image is a block-level picture.
func Image() Node {
	return Node{
		Type: doc.TypeImage,
		Spec: doc.NodeSpec{
			Group:     "block",
			Atom:      true,
			Draggable: true,
			Attrs:     doc.Attrs{"src": "", "alt": "", "title": "", "style": ""},
		},
		Parse: []ParseRule{{
			Tag: "img",
			Has: []string{"src"},
			GetAttrs: func(el *html.Node) doc.Attrs {
				attrs := doc.Attrs{}
				for _, key := range []string{"src", "alt", "title", "style"} {
					if v, ok := Attr(el, key); ok {
						attrs[key] = v
					}
				}
				return attrs
			},
		}},
		Render: func(n *doc.Node) (*html.Node, *html.Node) {
			a := n.Attrs()
			return element("img",
				"src", a.String("src"),
				"alt", a.String("alt"),
				"title", a.String("title"),
				"style", a.String("style"),
			), nil
		},
	}
}

// HardBreak is a line break inside inline content.
func HardBreak() Node {
	return Node{
		Type:  doc.TypeHardBreak,
		Spec:  doc.NodeSpec{Group: "inline", Inline: true, Selectable: false},
		Parse: []ParseRule{{Tag: "br"}},
		Render: func(*doc.Node) (*html.Node, *html.Node) {
			return element("br"), nil
		},
	}
}

// Bold is strong emphasis.
func Bold() Mark { return simpleMark(doc.MarkBold, "strong", "b") }

// Italic is emphasis.
func Italic() Mark { return simpleMark(doc.MarkItalic, "em", "i") }

// Underline underlines text.
func Underline() Mark { return simpleMark(doc.MarkUnderline, "u") }

// Strike strikes text through.
func Strike() Mark { return simpleMark(doc.MarkStrike, "s", "del", "strike") }

// Code is inline code.
func Code() Mark { return simpleMark(doc.MarkCode, "code") }

// Link is a hyperlink.
func Link() Mark {
	return Mark{
		Type: doc.MarkLink,
		Spec: doc.MarkSpec{Attrs: doc.Attrs{"href": ""}},
		Parse: []ParseRule{{
			Tag: "a",
			Has: []string{"href"},
			GetAttrs: func(el *html.Node) doc.Attrs {
				href, _ := Attr(el, "href")
				return doc.Attrs{"href": href}
			},
		}},
		Render: func(m doc.Mark) (*html.Node, *html.Node) {
			el := element("a", "href", m.Attrs.String("href"))
			return el, el
		},
	}
}
