// Package ops implements the structural edits the page toolbar drives:
// idempotent insertion into every container of a type, attribute merges and
// deletions by node type. Each call is one transaction.
package ops

import (
	"fmt"
	"sort"

	"github.com/eykd/pagemark-go/internal/doc"
)

// Position selects where Insert places new nodes inside a container.
type Position string

// Insert positions.
const (
	PositionStart  Position = "start"
	PositionEnd    Position = "end"
	PositionOffset Position = "offset"
)

// Predicate filters candidate nodes. A nil Predicate matches every node.
type Predicate func(n *doc.Node) bool

// InsertOptions configures Insert.
type InsertOptions struct {
	Type     doc.NodeType
	Attrs    doc.Attrs
	Content  []doc.Content
	Inside   doc.NodeType // container type; empty means the document root
	Position Position
	Offset   int // absolute position, used with PositionOffset
}

// UpdateOptions configures Update.
type UpdateOptions struct {
	Type      doc.NodeType
	Predicate Predicate
	Attrs     doc.Attrs
}

// DeleteOptions configures Delete.
type DeleteOptions struct {
	Type      doc.NodeType
	Predicate Predicate
}

// staged is one pending edit at an absolute position.
type staged struct {
	pos  int
	span doc.Range
}

// Find returns the span of every node of type t accepted by pred, in document order.
func Find(d *doc.Document, t doc.NodeType, pred Predicate) []doc.Range {
	if d == nil {
		return nil
	}
	var found []doc.Range
	d.Descendants(func(n *doc.Node, pos int) bool {
		if n.Type() == t && (pred == nil || pred(n)) {
			found = append(found, doc.Range{Node: n, From: pos, To: pos + n.Size()})
		}
		return true
	})
	return found
}

// Insert adds a node of opts.Type to every opts.Inside container that has no
// direct child of that type yet. Staged inserts are applied bottom-to-top so
// each earlier position stays valid. It returns the number of nodes inserted;
// a nil document or an already-satisfied document inserts nothing and does
// not notify listeners. Any failing insert aborts the whole batch.
func Insert(d *doc.Document, opts InsertOptions) (int, error) {
	if d == nil {
		return 0, nil
	}
	var containers []doc.Range
	if opts.Inside == "" {
		root := d.Root()
		containers = []doc.Range{{Node: root, From: -1, To: root.ContentSize() + 1}}
	} else {
		containers = Find(d, opts.Inside, nil)
	}

	var plan []staged
	for _, c := range containers {
		// Idempotency: skip containers that already hold a child of this type.
		if c.Node.HasChild(opts.Type) {
			continue
		}
		var pos int
		switch opts.Position {
		case PositionStart, "":
			pos = c.From + 1
		case PositionEnd:
			pos = c.To - 1
		case PositionOffset:
			pos = opts.Offset
		default:
			return 0, fmt.Errorf("unknown insert position %q", opts.Position)
		}
		plan = append(plan, staged{pos: pos, span: c})
	}
	if len(plan) == 0 {
		return 0, nil
	}

	sort.SliceStable(plan, func(i, j int) bool { return plan[i].pos > plan[j].pos })

	node := doc.Content{Type: opts.Type, Attrs: opts.Attrs, Children: opts.Content}
	tx := d.Begin()
	for _, p := range plan {
		if err := tx.Insert(p.pos, node); err != nil {
			tx.Discard()
			return 0, fmt.Errorf("inserting %s at %d: %w", opts.Type, p.pos, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(plan), nil
}

// Update shallow-merges opts.Attrs into every matching node. Nodes whose
// attributes would not change are left alone; when none change, nothing is
// committed. It returns the number of nodes changed.
func Update(d *doc.Document, opts UpdateOptions) (int, error) {
	if d == nil {
		return 0, nil
	}
	tx := d.Begin()
	changed := 0
	for _, m := range Find(d, opts.Type, opts.Predicate) {
		current := m.Node.Attrs()
		merged := current.Merge(opts.Attrs)
		if merged.Equal(current) {
			continue
		}
		if err := tx.SetAttrs(m.From, merged); err != nil {
			tx.Discard()
			return 0, fmt.Errorf("updating %s at %d: %w", opts.Type, m.From, err)
		}
		changed++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

// Delete removes every matching node, one range deletion per match, from the
// last match backwards. Nested matches are removed with their ancestor.
func Delete(d *doc.Document, opts DeleteOptions) (int, error) {
	if d == nil {
		return 0, nil
	}
	matches := outermost(Find(d, opts.Type, opts.Predicate))
	if len(matches) == 0 {
		return 0, nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].From > matches[j].From })

	tx := d.Begin()
	for _, m := range matches {
		if err := tx.DeleteRange(m.From, m.To); err != nil {
			tx.Discard()
			return 0, fmt.Errorf("deleting %s at %d: %w", opts.Type, m.From, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(matches), nil
}

// outermost drops spans contained in an earlier span.
func outermost(spans []doc.Range) []doc.Range {
	var out []doc.Range
	end := -1
	for _, s := range spans {
		if s.From < end {
			continue
		}
		out = append(out, s)
		end = s.To
	}
	return out
}

// RenumberPages rewrites every page's pageIndex to its 1-based position in
// document order. It returns the number of pages whose index changed.
func RenumberPages(d *doc.Document) (int, error) {
	if d == nil {
		return 0, nil
	}
	tx := d.Begin()
	changed := 0
	for i, p := range Find(d, doc.TypePage, nil) {
		attrs := p.Node.Attrs()
		if attrs.Int("pageIndex") == i+1 {
			if _, isInt := attrs["pageIndex"].(int); isInt {
				continue
			}
		}
		attrs["pageIndex"] = i + 1
		if err := tx.SetAttrs(p.From, attrs); err != nil {
			tx.Discard()
			return 0, fmt.Errorf("renumbering page at %d: %w", p.From, err)
		}
		changed++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}
