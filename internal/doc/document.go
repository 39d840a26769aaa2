package doc

import (
	"fmt"
	"sort"
	"sync"
)

// Selection is the cursor (From == To) or selected range.
type Selection struct {
	From int
	To   int
}

// Range locates a node together with its absolute span [From, To).
type Range struct {
	Node *Node
	From int
	To   int
}

// Document is a tree document. All reads see the last committed state; all
// writes go through a transaction.
type Document struct {
	mu        sync.Mutex
	state     *arena
	sel       Selection
	listeners map[int]func(*Document)
	nextL     int
}

// New builds a document from root, which must be of type TypeDoc.
func New(schema *Schema, root Content) (*Document, error) {
	if root.Type != TypeDoc {
		return nil, fmt.Errorf("%w: root must be %s, got %s", ErrContentViolation, TypeDoc, root.Type)
	}
	a := &arena{schema: schema, nodes: make(map[NodeID]*Node)}
	id, err := a.materialize(root, 0)
	if err != nil {
		return nil, err
	}
	a.root = id
	return &Document{state: a, listeners: make(map[int]func(*Document))}, nil
}

func (d *Document) snapshot() *arena {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Schema returns the schema the document was built with.
func (d *Document) Schema() *Schema { return d.snapshot().schema }

// Root returns the committed root node.
func (d *Document) Root() *Node { return d.snapshot().rootNode() }

// ContentSize returns the size of the root's content.
func (d *Document) ContentSize() int {
	a := d.snapshot()
	return a.contentSize(a.rootNode())
}

// TextContent returns the concatenated text of the whole document.
func (d *Document) TextContent() string { return d.Root().TextContent() }

// Node returns the committed node with id, if it still exists.
func (d *Document) Node(id NodeID) (*Node, bool) {
	n, ok := d.snapshot().nodes[id]
	return n, ok
}

// Descendants walks every node below the root depth-first, passing each
// node with its absolute start position. Returning false skips the node's
// children.
func (d *Document) Descendants(fn func(n *Node, pos int) bool) {
	a := d.snapshot()
	a.descendants(a.rootNode(), 0, fn)
}

// NodeAt returns the outermost node starting at pos.
func (d *Document) NodeAt(pos int) (*Node, error) {
	return d.snapshot().nodeAt(pos)
}

// Closest returns the innermost node of type t whose content contains pos.
func (d *Document) Closest(pos int, t NodeType) (Range, bool) {
	return d.snapshot().closest(pos, t)
}

// Selection returns the current selection.
func (d *Document) Selection() Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel
}

// SetSelection moves the selection, clamping both ends into the document.
func (d *Document) SetSelection(from, to int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	max := d.state.contentSize(d.state.rootNode())
	from, to = clampPos(from, max), clampPos(to, max)
	if to < from {
		from, to = to, from
	}
	d.sel = Selection{From: from, To: to}
}

// OnChange registers fn to run after every commit that changed the
// document. The returned function unregisters it.
func (d *Document) OnChange(fn func(*Document)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextL++
	key := d.nextL
	d.listeners[key] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, key)
	}
}

func (d *Document) notify() {
	d.mu.Lock()
	keys := make([]int, 0, len(d.listeners))
	for k := range d.listeners {
		keys = append(keys, k)
	}
	fns := make([]func(*Document), 0, len(keys))
	sort.Ints(keys)
	for _, k := range keys {
		fns = append(fns, d.listeners[k])
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(d)
	}
}

func clampPos(p, max int) int {
	if p < 0 {
		return 0
	}
	if p > max {
		return max
	}
	return p
}

func (a *arena) descendants(parent *Node, contentStart int, fn func(*Node, int) bool) {
	pos := contentStart
	for _, id := range parent.children {
		c := a.nodes[id]
		if fn(c, pos) && len(c.children) > 0 {
			a.descendants(c, pos+1, fn)
		}
		pos += a.size(c)
	}
}

// resolve finds the container and child index of the boundary at pos.
func (a *arena) resolve(pos int) (*Node, int, error) {
	root := a.rootNode()
	if pos < 0 || pos > a.contentSize(root) {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	parent, start := root, 0
descend:
	for {
		offset := start
		for i, id := range parent.children {
			if pos == offset {
				return parent, i, nil
			}
			c := a.nodes[id]
			sz := a.size(c)
			if pos < offset+sz {
				if c.leaf {
					return nil, 0, fmt.Errorf("%w: %d falls inside %s", ErrInvalidPosition, pos, c.typ)
				}
				parent, start = c, offset+1
				continue descend
			}
			offset += sz
		}
		return parent, len(parent.children), nil
	}
}

func (a *arena) nodeAt(pos int) (*Node, error) {
	parent, i, err := a.resolve(pos)
	if err != nil {
		return nil, err
	}
	if i >= len(parent.children) {
		return nil, fmt.Errorf("%w: %d", ErrNoNodeAtPosition, pos)
	}
	// resolve stops at the shallowest boundary, so the child at i starts at pos.
	return a.nodes[parent.children[i]], nil
}

func (a *arena) closest(pos int, t NodeType) (Range, bool) {
	var found Range
	ok := false
	parent, start := a.rootNode(), 0
	for {
		offset := start
		var next *Node
		for _, id := range parent.children {
			c := a.nodes[id]
			sz := a.size(c)
			if offset < pos && pos < offset+sz && !c.leaf {
				if c.typ == t {
					found, ok = Range{Node: c, From: offset, To: offset + sz}, true
				}
				next, start = c, offset+1
				break
			}
			offset += sz
		}
		if next == nil {
			return found, ok
		}
		parent = next
	}
}

// posOf returns the absolute start of node id, or -1.
func (a *arena) posOf(id NodeID) int {
	found := -1
	a.descendants(a.rootNode(), 0, func(n *Node, pos int) bool {
		if found >= 0 {
			return false
		}
		if n.id == id {
			found = pos
			return false
		}
		return true
	})
	return found
}
