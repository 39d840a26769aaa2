package ruler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/eykd/pagemark-go/internal/page"
)

// ApplyFunc persists a new margin for one edge, in inches.
type ApplyFunc func(edge page.Edge, inches float64) error

// Drag tracks at most one marker drag at a time. Each gesture is identified
// by a token handed out by Begin; moves and the release must present it.
type Drag struct {
	mu     sync.Mutex
	apply  ApplyFunc
	active *gesture
}

type gesture struct {
	token   uuid.UUID
	edge    page.Edge
	start   float64
	initial float64
	layout  Layout
}

// NewDrag returns an idle drag that reports margin changes to apply.
func NewDrag(apply ApplyFunc) *Drag {
	return &Drag{apply: apply}
}

// Active reports whether a gesture is in progress, and on which edge.
func (d *Drag) Active() (page.Edge, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return "", false
	}
	return d.active.edge, true
}

// Begin starts dragging the marker of edge with the pointer at pointer
// (pixels along the edge's axis).
func (d *Drag) Begin(edge page.Edge, pointer float64, l Layout) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return uuid.Nil, ErrDragInProgress
	}
	g := &gesture{
		token:   uuid.New(),
		edge:    edge,
		start:   pointer,
		initial: l.Margins.Get(edge),
		layout:  l,
	}
	d.active = g
	return g.token, nil
}

// Move converts the pointer travel since Begin into a margin for the
// dragged edge, clamped to the page, and applies it. Dragging right or down
// grows the left and top margins and shrinks the right and bottom ones.
func (d *Drag) Move(token uuid.UUID, pointer float64) (float64, error) {
	d.mu.Lock()
	g := d.active
	if g == nil || g.token != token {
		d.mu.Unlock()
		return 0, ErrStaleGesture
	}
	d.mu.Unlock()

	delta := (pointer - g.start) / g.layout.PixelsPerInch()
	v := g.initial + delta
	if g.edge == page.Right || g.edge == page.Bottom {
		v = g.initial - delta
	}
	v = page.Clamp(v, page.Dimension(g.edge, g.layout.Width, g.layout.Height))
	if d.apply != nil {
		if err := d.apply(g.edge, v); err != nil {
			return v, fmt.Errorf("applying %s margin: %w", g.edge, err)
		}
	}
	return v, nil
}

// End finishes the gesture identified by token.
func (d *Drag) End(token uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil || d.active.token != token {
		return ErrStaleGesture
	}
	d.active = nil
	return nil
}
