package doc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NodeID identifies a node within one document. Ids are never reused.
type NodeID uint64

// Node is a committed node. Nodes are immutable snapshots: a transaction
// edits private copies, so a *Node obtained before a commit keeps
// describing the tree as it was.
type Node struct {
	id       NodeID
	parent   NodeID
	typ      NodeType
	leaf     bool
	attrs    Attrs
	text     string
	marks    []Mark
	children []NodeID
	a        *arena
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// IsText reports whether n is a text run.
func (n *Node) IsText() bool { return n.typ == TypeText }

// IsLeaf reports whether n cannot hold children.
func (n *Node) IsLeaf() bool { return n.leaf }

// Attrs returns a copy of the node's attributes.
func (n *Node) Attrs() Attrs { return n.attrs.Clone() }

// Attr returns one attribute value.
func (n *Node) Attr(key string) any { return n.attrs[key] }

// Text returns the content of a text run.
func (n *Node) Text() string { return n.text }

// Marks returns a copy of the marks on a text run.
func (n *Node) Marks() []Mark {
	out := make([]Mark, len(n.marks))
	copy(out, n.marks)
	return out
}

// HasMark reports whether the run carries a mark of type t.
func (n *Node) HasMark(t MarkType) bool {
	for _, m := range n.marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.a.nodes[n.children[i]] }

// Children returns the direct children in order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	for i, id := range n.children {
		out[i] = n.a.nodes[id]
	}
	return out
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	if n.parent == 0 {
		return nil
	}
	return n.a.nodes[n.parent]
}

// HasChild reports whether a direct child of type t exists.
func (n *Node) HasChild(t NodeType) bool {
	for _, id := range n.children {
		if n.a.nodes[id].typ == t {
			return true
		}
	}
	return false
}

// Size returns the number of positions the node occupies.
func (n *Node) Size() int { return n.a.size(n) }

// ContentSize returns the number of positions between the node's open and close tokens.
func (n *Node) ContentSize() int { return n.a.contentSize(n) }

// TextContent concatenates the text of every run inside n.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.a.writeText(&b, n)
	return b.String()
}

// Content converts n back into a detached description.
func (n *Node) Content() Content {
	c := Content{Type: n.typ, Attrs: n.attrs.Clone(), Text: n.text}
	if len(n.marks) > 0 {
		c.Marks = n.Marks()
	}
	for _, id := range n.children {
		c.Children = append(c.Children, n.a.nodes[id].Content())
	}
	return c
}

// arena owns every node of one document state.
type arena struct {
	schema *Schema
	nodes  map[NodeID]*Node
	root   NodeID
	next   NodeID
}

func (a *arena) rootNode() *Node { return a.nodes[a.root] }

func (a *arena) size(n *Node) int {
	switch {
	case n.typ == TypeText:
		return utf8.RuneCountInString(n.text)
	case n.leaf:
		return 1
	}
	return 2 + a.contentSize(n)
}

func (a *arena) contentSize(n *Node) int {
	total := 0
	for _, id := range n.children {
		total += a.size(a.nodes[id])
	}
	return total
}

func (a *arena) writeText(b *strings.Builder, n *Node) {
	if n.typ == TypeText {
		b.WriteString(n.text)
		return
	}
	for _, id := range n.children {
		a.writeText(b, a.nodes[id])
	}
}

// clone deep-copies the arena so edits never touch committed nodes.
func (a *arena) clone() *arena {
	out := &arena{schema: a.schema, nodes: make(map[NodeID]*Node, len(a.nodes)), root: a.root, next: a.next}
	for id, n := range a.nodes {
		c := *n
		c.attrs = n.attrs.Clone()
		if n.marks != nil {
			c.marks = make([]Mark, len(n.marks))
			for i, m := range n.marks {
				c.marks[i] = Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
			}
		}
		if n.children != nil {
			c.children = append([]NodeID(nil), n.children...)
		}
		c.a = out
		out.nodes[id] = &c
	}
	return out
}

// materialize validates c against the schema and adds it (with its subtree)
// to the arena under parent.
func (a *arena) materialize(c Content, parent NodeID) (NodeID, error) {
	spec, ok := a.schema.Node(c.Type)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
	a.next++
	id := a.next
	n := &Node{
		id:     id,
		parent: parent,
		typ:    c.Type,
		leaf:   spec.Content == "",
		attrs:  spec.Attrs.Merge(c.Attrs),
		a:      a,
	}
	if c.Type == TypeText {
		n.text = c.Text
		for _, m := range c.Marks {
			if _, ok := a.schema.Mark(m.Type); !ok {
				return 0, fmt.Errorf("%w: mark %q", ErrUnknownType, m.Type)
			}
			n.marks = setMark(n.marks, m)
		}
	}
	a.nodes[id] = n
	if n.leaf {
		if len(c.Children) > 0 {
			return 0, fmt.Errorf("%w: %s is a leaf", ErrContentViolation, c.Type)
		}
		return id, nil
	}
	if len(c.Children) == 0 && a.schema.RequiresContent(c.Type) {
		return 0, fmt.Errorf("%w: %s requires content", ErrContentViolation, c.Type)
	}
	for _, child := range c.Children {
		if _, ok := a.schema.Node(child.Type); !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownType, child.Type)
		}
		if !a.schema.Allows(c.Type, child.Type) {
			return 0, fmt.Errorf("%w: %s inside %s", ErrContentViolation, child.Type, c.Type)
		}
		cid, err := a.materialize(child, id)
		if err != nil {
			return 0, err
		}
		n.children = append(n.children, cid)
	}
	return id, nil
}

// drop removes n's subtree from the arena.
func (a *arena) drop(id NodeID) {
	n := a.nodes[id]
	for _, c := range n.children {
		a.drop(c)
	}
	delete(a.nodes, id)
}

// setMark adds m to marks, replacing an existing mark of the same type.
func setMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	for _, old := range marks {
		if old.Type != m.Type {
			out = append(out, old)
		}
	}
	return append(out, Mark{Type: m.Type, Attrs: m.Attrs.Clone()})
}

func removeMark(marks []Mark, t MarkType) []Mark {
	var out []Mark
	for _, old := range marks {
		if old.Type != t {
			out = append(out, old)
		}
	}
	return out
}

func marksEqual(a, b []Mark) bool {
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
