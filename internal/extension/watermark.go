package extension

import (
	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
)

// DefaultWatermarkText is the watermark text used when none is given.
const DefaultWatermarkText = "WATERMARK"

const watermarkClass = "absolute top-1/2 left-1/2 -translate-x-1/2 -translate-y-1/2 -rotate-30 " +
	"text-[8rem] text-gray-400 text-center opacity-10 pointer-events-none select-none whitespace-nowrap z-0"

// Watermark is an atomic overlay drawn across a page.
func Watermark() Node {
	return Node{
		Type: doc.TypeWatermark,
		Spec: doc.NodeSpec{Group: "block", Atom: true, Attrs: doc.Attrs{"text": DefaultWatermarkText}},
		Parse: []ParseRule{{
			Tag: "div",
			Has: []string{"data-watermark"},
			GetAttrs: func(el *html.Node) doc.Attrs {
				return doc.Attrs{"text": TextContent(el)}
			},
		}},
		Render: func(n *doc.Node) (*html.Node, *html.Node) {
			el := element("div", "data-watermark", "true", "class", watermarkClass)
			el.AppendChild(&html.Node{Type: html.TextNode, Data: n.Attrs().String("text")})
			return el, nil
		},
	}
}
