// Package doc provides the tree document the page engine edits: an arena of
// typed nodes addressed by stable ids, with positional offsets computed on
// demand for traversal, transactions and change notification.
package doc

import (
	"sort"
	"strconv"
	"strings"
)

// NodeType is the tag identifying what a tree node represents.
type NodeType string

// Node vocabulary.
const (
	TypeDoc         NodeType = "doc"
	TypePage        NodeType = "pageBlock"
	TypeHeader      NodeType = "tiptapHeader"
	TypeFooter      NodeType = "tiptapFooter"
	TypeWatermark   NodeType = "tiptapWatermark"
	TypeParagraph   NodeType = "paragraph"
	TypeHeading     NodeType = "heading"
	TypeText        NodeType = "text"
	TypeBulletList  NodeType = "bulletList"
	TypeOrderedList NodeType = "orderedList"
	TypeListItem    NodeType = "listItem"
	TypeBlockquote  NodeType = "blockquote"
	TypeCodeBlock   NodeType = "codeBlock"
	TypeTable       NodeType = "table"
	TypeTableRow    NodeType = "tableRow"
	TypeTableCell   NodeType = "tableCell"
	TypeImage       NodeType = "image"
	TypeHardBreak   NodeType = "hardBreak"
)

// MarkType is the tag of a style annotation attached to a run of text.
type MarkType string

// Mark vocabulary.
const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
	MarkTextStyle MarkType = "textStyle"
	MarkStyle     MarkType = "style"
)

// Attrs maps attribute names to string, float64 or int values.
type Attrs map[string]any

// Clone returns a shallow copy of a. A nil map clones to an empty one.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge returns a copy of a with b's entries laid over it.
func (a Attrs) Merge(b Attrs) Attrs {
	out := a.Clone()
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Equal reports whether a and b hold the same keys and values.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value under key formatted as a string.
func (a Attrs) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Float returns the value under key as a number. Strings such as "1in" are
// parsed after dropping the unit suffix; anything unparsable yields 0.
func (a Attrs) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "in"), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// Int returns the value under key as an integer.
func (a Attrs) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}

// Mark is a style annotation on a text node.
type Mark struct {
	Type  MarkType
	Attrs Attrs
}

// Equal reports whether m and o have the same type and attributes.
func (m Mark) Equal(o Mark) bool {
	return m.Type == o.Type && m.Attrs.Equal(o.Attrs)
}

// Content describes a node that does not live in a document yet. Content
// values are materialised into the arena by New and Tx.Insert.
type Content struct {
	Type     NodeType
	Attrs    Attrs
	Text     string
	Marks    []Mark
	Children []Content
}

// Elem builds element content.
func Elem(t NodeType, attrs Attrs, children ...Content) Content {
	return Content{Type: t, Attrs: attrs, Children: children}
}

// Text builds a text run.
func Text(s string, marks ...Mark) Content {
	return Content{Type: TypeText, Text: s, Marks: marks}
}

// NodeSpec describes how a node type behaves in the document.
type NodeSpec struct {
	Group      string // "block" or "inline"
	Content    string // content expression: "block+", "inline*", "tableRow+", "" for leaves
	Inline     bool
	Atom       bool
	Selectable bool
	Draggable  bool
	Isolating  bool
	Attrs      Attrs // attribute defaults
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Attrs Attrs
}

// Schema is the set of node and mark types a document may contain.
type Schema struct {
	nodes map[NodeType]NodeSpec
	marks map[MarkType]MarkSpec
}

// NewSchema builds a schema. TypeDoc and TypeText are always present.
func NewSchema(nodes map[NodeType]NodeSpec, marks map[MarkType]MarkSpec) *Schema {
	s := &Schema{
		nodes: make(map[NodeType]NodeSpec, len(nodes)+2),
		marks: make(map[MarkType]MarkSpec, len(marks)),
	}
	s.nodes[TypeDoc] = NodeSpec{Content: "block+"}
	s.nodes[TypeText] = NodeSpec{Group: "inline", Inline: true}
	for t, spec := range nodes {
		s.nodes[t] = spec
	}
	for t, spec := range marks {
		s.marks[t] = spec
	}
	return s
}

// Node returns the spec for t.
func (s *Schema) Node(t NodeType) (NodeSpec, bool) {
	spec, ok := s.nodes[t]
	return spec, ok
}

// Mark returns the spec for t.
func (s *Schema) Mark(t MarkType) (MarkSpec, bool) {
	spec, ok := s.marks[t]
	return spec, ok
}

// Allows reports whether a node of type child may appear inside parent.
func (s *Schema) Allows(parent, child NodeType) bool {
	expr, _ := s.contentExpr(parent)
	if expr == "" {
		return false
	}
	if NodeType(expr) == child {
		return true
	}
	spec, ok := s.nodes[child]
	return ok && spec.Group == expr
}

// RequiresContent reports whether t must hold at least one child.
func (s *Schema) RequiresContent(t NodeType) bool {
	_, plus := s.contentExpr(t)
	return plus
}

func (s *Schema) contentExpr(t NodeType) (string, bool) {
	spec := s.nodes[t]
	switch {
	case strings.HasSuffix(spec.Content, "+"):
		return strings.TrimSuffix(spec.Content, "+"), true
	case strings.HasSuffix(spec.Content, "*"):
		return strings.TrimSuffix(spec.Content, "*"), false
	}
	return spec.Content, false
}
