package extension

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/page"
)

// Page attribute names.
const (
	AttrPageHeight        = "pageHeight"
	AttrPageWidth         = "pageWidth"
	AttrPagePaddingTop    = "pagePaddingTop"
	AttrPagePaddingRight  = "pagePaddingRight"
	AttrPagePaddingBottom = "pagePaddingBottom"
	AttrPagePaddingLeft   = "pagePaddingLeft"
	AttrPageBreakHeight   = "pageBreakHeight"
	AttrPageIndex         = "pageIndex"
)

// Presentational classes of the page elements.
const (
	pageOuterClass = "relative break-inside-avoid print:break-before-page mx-auto"
	pageInnerClass = "bg-white w-full shadow"
	pageGapClass   = "bg-[#f2f2f7] w-full h-3 print:hidden print:h-0"
)

var paddingAttr = map[page.Edge]string{
	page.Top:    AttrPagePaddingTop,
	page.Right:  AttrPagePaddingRight,
	page.Bottom: AttrPagePaddingBottom,
	page.Left:   AttrPagePaddingLeft,
}

// PaddingAttr returns the page attribute holding an edge's padding.
func PaddingAttr(e page.Edge) string { return paddingAttr[e] }

// PaddingAttrs renders margins as the four page padding attributes.
func PaddingAttrs(m page.Margins) doc.Attrs {
	out := doc.Attrs{}
	for _, e := range page.Edges {
		out[paddingAttr[e]] = page.FormatInches(m.Get(e))
	}
	return out
}

// SizeAttrs renders a paper size as page width and height attributes.
func SizeAttrs(s page.Size) doc.Attrs {
	return doc.Attrs{
		AttrPageWidth:  page.FormatInches(s.Width),
		AttrPageHeight: page.FormatInches(s.Height),
	}
}

// PageAttrs returns the full attribute set of a page.
func PageAttrs(s page.Size, m page.Margins, index int) doc.Attrs {
	attrs := SizeAttrs(s).Merge(PaddingAttrs(m))
	attrs[AttrPageBreakHeight] = page.FormatInches(page.BreakHeight)
	attrs[AttrPageIndex] = index
	return attrs
}

// MarginsOf reads a page's padding attributes back into margins.
func MarginsOf(n *doc.Node) page.Margins {
	a := n.Attrs()
	var m page.Margins
	for _, e := range page.Edges {
		m = m.With(e, a.Float(paddingAttr[e]))
	}
	return m
}

// DimensionsOf returns a page's width and height in inches.
func DimensionsOf(n *doc.Node) (width, height float64) {
	a := n.Attrs()
	return a.Float(AttrPageWidth), a.Float(AttrPageHeight)
}

// Page is the page container: an isolating block holding one page of
// content, sized and padded by its attributes. Defaults come from A4.
func Page() Node {
	a4, _ := page.Lookup(page.A4)
	return Node{
		Type: doc.TypePage,
		Spec: doc.NodeSpec{
			Group:     "block",
			Content:   "block+",
			Isolating: true,
			Attrs:     PageAttrs(a4, page.Uniform(a4.Padding), 1),
		},
		Parse: []ParseRule{{
			Tag:      "div",
			Equals:   map[string]string{"data-type": "pageBlock"},
			GetAttrs: parsePageAttrs,
		}},
		Render: renderPage,
	}
}

// pageDataAttrs maps page attributes to the data-* attributes that carry
// them losslessly.
var pageDataAttrs = []struct{ attr, data string }{
	{AttrPageWidth, "data-page-width"},
	{AttrPageHeight, "data-page-height"},
	{AttrPagePaddingTop, "data-padding-top"},
	{AttrPagePaddingRight, "data-padding-right"},
	{AttrPagePaddingBottom, "data-padding-bottom"},
	{AttrPagePaddingLeft, "data-padding-left"},
	{AttrPageBreakHeight, "data-page-break-height"},
}

func parsePageAttrs(el *html.Node) doc.Attrs {
	attrs := doc.Attrs{}
	for _, p := range pageDataAttrs {
		if v, ok := Attr(el, p.data); ok && v != "" {
			attrs[p.attr] = v
		}
	}
	if v, ok := Attr(el, "data-page-index"); ok {
		if i, err := strconv.Atoi(v); err == nil {
			attrs[AttrPageIndex] = i
		}
	}
	return attrs
}

func renderPage(n *doc.Node) (*html.Node, *html.Node) {
	a := n.Attrs()
	kv := []string{
		"data-type", "pageBlock",
		"data-page-index", a.String(AttrPageIndex),
	}
	for _, p := range pageDataAttrs {
		kv = append(kv, p.data, a.String(p.attr))
	}
	kv = append(kv,
		"style", "width: "+a.String(AttrPageWidth)+";",
		"class", pageOuterClass,
	)
	outer := element("div", kv...)

	padding := "padding: " + a.String(AttrPagePaddingTop) + " " + a.String(AttrPagePaddingRight) + " " +
		a.String(AttrPagePaddingBottom) + " " + a.String(AttrPagePaddingLeft) + ";"
	inner := element("div",
		"style", "height: "+a.String(AttrPageHeight)+"; "+padding,
		"class", pageInnerClass,
	)
	gap := element("div",
		"style", "height: "+a.String(AttrPageBreakHeight)+";",
		"class", pageGapClass,
	)
	outer.AppendChild(inner)
	outer.AppendChild(gap)
	return outer, inner
}
