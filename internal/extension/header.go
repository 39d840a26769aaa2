package extension

import (
	"golang.org/x/net/html"

	"github.com/eykd/pagemark-go/internal/doc"
)

const (
	headerClass = "text-xs text-gray-400 border-b border-dashed pb-2 mb-4 text-center"
	footerClass = "text-xs text-gray-400 border-t border-dashed pt-2 mt-4 text-center"
)

// Header is the running header of a page.
func Header() Node {
	return pageBand(doc.TypeHeader, "header", headerClass)
}

// Footer is the running footer of a page.
func Footer() Node {
	return pageBand(doc.TypeFooter, "footer", footerClass)
}

func pageBand(t doc.NodeType, tag, class string) Node {
	return Node{
		Type:  t,
		Spec:  doc.NodeSpec{Group: "block", Content: "inline*", Isolating: true},
		Parse: []ParseRule{{Tag: tag}},
		Render: func(*doc.Node) (*html.Node, *html.Node) {
			el := element(tag, "class", class)
			return el, el
		},
	}
}
