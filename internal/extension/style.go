package extension

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
)

// Style is the raw inline style span. Its style and class attributes are
// copied verbatim; merging overlapping spans is the caller's job.
func Style() Mark {
	get := func(el *html.Node) doc.Attrs {
		style, _ := Attr(el, "style")
		class, _ := Attr(el, "class")
		return doc.Attrs{"style": style, "class": class}
	}
	return Mark{
		Type: doc.MarkStyle,
		Spec: doc.MarkSpec{Attrs: doc.Attrs{"style": "", "class": ""}},
		Parse: []ParseRule{
			{Tag: "span", Has: []string{"style", "class"}, GetAttrs: get},
			{Tag: "span", Has: []string{"style"}, GetAttrs: get},
			{Tag: "span", Has: []string{"class"}, GetAttrs: get},
		},
		Render: func(m doc.Mark) (*html.Node, *html.Node) {
			el := element("span", "style", m.Attrs.String("style"), "class", m.Attrs.String("class"))
			return el, el
		},
	}
}

// textStyleProps maps textStyle attributes to CSS properties.
var textStyleProps = []struct{ attr, prop string }{
	{"color", "color"},
	{"backgroundColor", "background-color"},
	{"verticalAlign", "vertical-align"},
	{"fontSize", "font-size"},
	{"fontFamily", "font-family"},
	{"textDecoration", "text-decoration"},
}

// TextStyle carries typed text properties (color, highlight, scripts).
// It renders with a data-text-style marker so it never collides with the
// raw style span on parse.
func TextStyle() Mark {
	return Mark{
		Type: doc.MarkTextStyle,
		Parse: []ParseRule{{
			Tag: "span",
			Has: []string{"data-text-style"},
			GetAttrs: func(el *html.Node) doc.Attrs {
				style, _ := Attr(el, "style")
				props := ParseStyle(style)
				attrs := doc.Attrs{}
				for _, p := range textStyleProps {
					if v, ok := props[p.prop]; ok {
						attrs[p.attr] = v
					}
				}
				return attrs
			},
		}},
		Render: func(m doc.Mark) (*html.Node, *html.Node) {
			var parts []string
			for _, p := range textStyleProps {
				if v := m.Attrs.String(p.attr); v != "" {
					parts = append(parts, p.prop+": "+v)
				}
			}
			el := element("span", "data-text-style", "true", "style", strings.Join(parts, "; "))
			return el, el
		},
	}
}
