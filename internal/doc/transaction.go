package doc

import "fmt"

// Tx stages edits on a private copy of the document. Nothing is visible to
// readers until Commit, and a transaction that changed nothing commits
// without notifying listeners.
type Tx struct {
	d       *Document
	base    *arena
	work    *arena
	changed bool
	closed  bool
}

// Begin starts a transaction against the current committed state.
func (d *Document) Begin() *Tx {
	base := d.snapshot()
	return &Tx{d: d, base: base, work: base.clone()}
}

// Changed reports whether any staged edit altered the document.
func (tx *Tx) Changed() bool { return tx.changed }

// Root returns the working copy's root, reflecting edits staged so far.
func (tx *Tx) Root() *Node { return tx.work.rootNode() }

// NodeAt returns the outermost node starting at pos in the working copy.
func (tx *Tx) NodeAt(pos int) (*Node, error) {
	if tx.closed {
		return nil, ErrClosed
	}
	return tx.work.nodeAt(pos)
}

// Insert places c at the boundary pos.
func (tx *Tx) Insert(pos int, c Content) error {
	if tx.closed {
		return ErrClosed
	}
	parent, i, err := tx.work.resolve(pos)
	if err != nil {
		return err
	}
	if !tx.work.schema.Allows(parent.typ, c.Type) {
		return fmt.Errorf("%w: %s inside %s", ErrContentViolation, c.Type, parent.typ)
	}
	mark := tx.work.next
	id, err := tx.work.materialize(c, parent.id)
	if err != nil {
		tx.discardFrom(mark)
		return err
	}
	children := make([]NodeID, 0, len(parent.children)+1)
	children = append(children, parent.children[:i]...)
	children = append(children, id)
	parent.children = append(children, parent.children[i:]...)
	tx.changed = true
	return nil
}

// discardFrom drops nodes created after mark by a failed materialize.
func (tx *Tx) discardFrom(mark NodeID) {
	for id := range tx.work.nodes {
		if id > mark {
			delete(tx.work.nodes, id)
		}
	}
}

// SetAttrs replaces the attributes of the node starting at pos.
func (tx *Tx) SetAttrs(pos int, attrs Attrs) error {
	if tx.closed {
		return ErrClosed
	}
	n, err := tx.work.nodeAt(pos)
	if err != nil {
		return err
	}
	if n.attrs.Equal(attrs) {
		return nil
	}
	n.attrs = attrs.Clone()
	tx.changed = true
	return nil
}

// DeleteRange removes the sibling nodes lying between the boundaries from and to.
func (tx *Tx) DeleteRange(from, to int) error {
	if tx.closed {
		return ErrClosed
	}
	if from == to {
		return nil
	}
	if from > to {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, from, to)
	}
	p1, i, err := tx.work.resolve(from)
	if err != nil {
		return err
	}
	p2, j, err := tx.work.resolve(to)
	if err != nil {
		return err
	}
	if p1 != p2 {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, from, to)
	}
	if j == len(p1.children) && i == 0 && tx.work.schema.RequiresContent(p1.typ) {
		return fmt.Errorf("%w: %s requires content", ErrContentViolation, p1.typ)
	}
	for _, id := range p1.children[i:j] {
		tx.work.drop(id)
	}
	p1.children = append(p1.children[:i:i], p1.children[j:]...)
	tx.changed = true
	return nil
}

// AddMark applies m to every text run overlapping [from, to), splitting
// runs at the range ends. A mark of the same type is replaced.
func (tx *Tx) AddMark(from, to int, m Mark) error {
	if _, ok := tx.work.schema.Mark(m.Type); !ok {
		return fmt.Errorf("%w: mark %q", ErrUnknownType, m.Type)
	}
	return tx.editMarks(from, to, func(marks []Mark) []Mark { return setMark(marks, m) })
}

// RemoveMark strips marks of type t from text runs overlapping [from, to).
func (tx *Tx) RemoveMark(from, to int, t MarkType) error {
	return tx.editMarks(from, to, func(marks []Mark) []Mark { return removeMark(marks, t) })
}

type textHit struct {
	node  *Node
	start int
}

func (tx *Tx) editMarks(from, to int, edit func([]Mark) []Mark) error {
	if tx.closed {
		return ErrClosed
	}
	max := tx.work.contentSize(tx.work.rootNode())
	if from < 0 || to > max || from > to {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, from, to)
	}
	var hits []textHit
	tx.work.descendants(tx.work.rootNode(), 0, func(n *Node, pos int) bool {
		if n.typ == TypeText && pos < to && pos+tx.work.size(n) > from {
			hits = append(hits, textHit{node: n, start: pos})
		}
		return true
	})
	// Splitting a run never changes its size, so positions stay valid.
	for _, h := range hits {
		tx.splitAndMark(h, from, to, edit)
	}
	return nil
}

func (tx *Tx) splitAndMark(h textHit, from, to int, edit func([]Mark) []Mark) {
	n := h.node
	runes := []rune(n.text)
	a := from - h.start
	if a < 0 {
		a = 0
	}
	b := to - h.start
	if b > len(runes) {
		b = len(runes)
	}
	marked := edit(n.marks)
	if marksEqual(marked, n.marks) {
		return
	}
	parent := tx.work.nodes[n.parent]
	idx := 0
	for k, id := range parent.children {
		if id == n.id {
			idx = k
			break
		}
	}
	orig := n.marks
	var parts []NodeID
	if a > 0 {
		parts = append(parts, tx.newRun(n, string(runes[:a]), orig))
	}
	parts = append(parts, n.id)
	if b < len(runes) {
		parts = append(parts, tx.newRun(n, string(runes[b:]), orig))
	}
	n.text = string(runes[a:b])
	n.marks = marked
	children := make([]NodeID, 0, len(parent.children)+len(parts)-1)
	children = append(children, parent.children[:idx]...)
	children = append(children, parts...)
	parent.children = append(children, parent.children[idx+1:]...)
	tx.changed = true
}

func (tx *Tx) newRun(src *Node, text string, marks []Mark) NodeID {
	tx.work.next++
	id := tx.work.next
	run := &Node{id: id, parent: src.parent, typ: TypeText, leaf: true, attrs: src.attrs.Clone(), text: text, a: tx.work}
	for _, m := range marks {
		run.marks = append(run.marks, Mark{Type: m.Type, Attrs: m.Attrs.Clone()})
	}
	tx.work.nodes[id] = run
	return id
}

// Commit publishes the staged edits. It returns ErrConflict when another
// transaction committed first.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrClosed
	}
	tx.closed = true
	if !tx.changed {
		return nil
	}
	d := tx.d
	d.mu.Lock()
	if d.state != tx.base {
		d.mu.Unlock()
		return ErrConflict
	}
	d.state = tx.work
	max := tx.work.contentSize(tx.work.rootNode())
	d.sel = Selection{From: clampPos(d.sel.From, max), To: clampPos(d.sel.To, max)}
	d.mu.Unlock()
	d.notify()
	return nil
}

// Discard abandons the transaction.
func (tx *Tx) Discard() { tx.closed = true }
