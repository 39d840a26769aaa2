package toolbar

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/doc/ops"
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
)

// NewPageText fills the header, paragraph and footer of a page created by
// InsertPageBreak.
const NewPageText = "New Page"

// Option configures a Controller.
type Option func(*Controller)

// WithState sets the initial configuration.
func WithState(s State) Option {
	return func(c *Controller) { c.state = s }
}

// WithLogger sets the logger for developer diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRenumberOnBreak controls whether InsertPageBreak renumbers every page
// afterwards. It is on by default.
func WithRenumberOnBreak(on bool) Option {
	return func(c *Controller) { c.renumber = on }
}

// Controller applies page toolbar actions. Every action takes the document
// explicitly; a nil document only changes the configuration.
type Controller struct {
	mu          sync.Mutex
	state       State
	renumber    bool
	initialised bool
	logger      *slog.Logger
}

// New returns a controller with DefaultState.
func New(opts ...Option) *Controller {
	c := &Controller{
		state:    DefaultState(),
		renumber: true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current configuration.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// update applies fn to the state and returns the result. Document edits
// happen after the lock is released so change listeners may read State.
func (c *Controller) update(fn func(s *State)) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	return c.state
}

// Init mirrors the configuration into d the first time a document is
// available. Later calls do nothing.
func (c *Controller) Init(d *doc.Document) error {
	if d == nil {
		return nil
	}
	c.mu.Lock()
	if c.initialised {
		c.mu.Unlock()
		return nil
	}
	c.initialised = true
	c.mu.Unlock()

	s := c.update(func(s *State) { s.Margins = s.defaultMargins() })
	if s.HeaderFooterVisible {
		if err := c.insertHeaderFooter(d); err != nil {
			return err
		}
	}
	if s.WatermarkEnabled {
		if err := c.insertWatermarks(d, s.watermarkText()); err != nil {
			return err
		}
	}
	return c.applyMargins(d, s.Margins)
}

// Restore derives the configuration from a document that already carries
// page state and marks the controller initialised.
func (c *Controller) Restore(d *doc.Document) {
	if d == nil {
		return
	}
	pages := ops.Find(d, doc.TypePage, nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialised = true
	if len(pages) == 0 {
		return
	}
	first := pages[0].Node
	if sz, ok := page.Match(extension.DimensionsOf(first)); ok {
		c.state.PageSize = sz.ID
	}
	c.state.Margins = extension.MarginsOf(first)
	c.state.MarginsVisible = c.state.Margins != page.Uniform(page.MinimalMargin)
	c.state.HeaderFooterVisible = false
	c.state.WatermarkEnabled = false
	for _, p := range pages {
		if p.Node.HasChild(doc.TypeHeader) || p.Node.HasChild(doc.TypeFooter) {
			c.state.HeaderFooterVisible = true
		}
		for _, ch := range p.Node.Children() {
			if ch.Type() == doc.TypeWatermark {
				c.state.WatermarkEnabled = true
				c.state.WatermarkText = ch.Attrs().String("text")
			}
		}
	}
}

// ToggleHeaderFooter flips header/footer visibility, adding an empty header
// and footer to every page or removing them all.
func (c *Controller) ToggleHeaderFooter(d *doc.Document) error {
	s := c.update(func(s *State) { s.HeaderFooterVisible = !s.HeaderFooterVisible })
	c.logger.Debug("toggle header/footer", "visible", s.HeaderFooterVisible)
	if s.HeaderFooterVisible {
		return c.insertHeaderFooter(d)
	}
	return c.removeHeaderFooter(d)
}

// ToggleWatermark flips the watermark on every page.
func (c *Controller) ToggleWatermark(d *doc.Document) error {
	s := c.update(func(s *State) { s.WatermarkEnabled = !s.WatermarkEnabled })
	c.logger.Debug("toggle watermark", "enabled", s.WatermarkEnabled)
	if s.WatermarkEnabled {
		return c.insertWatermarks(d, s.watermarkText())
	}
	_, err := ops.Delete(d, ops.DeleteOptions{Type: doc.TypeWatermark})
	return c.report("remove watermarks", err)
}

// ToggleMargins switches between the page size's default padding and the
// minimal margin, resetting all four edges.
func (c *Controller) ToggleMargins(d *doc.Document) error {
	s := c.update(func(s *State) {
		s.MarginsVisible = !s.MarginsVisible
		s.Margins = s.defaultMargins()
	})
	c.logger.Debug("toggle margins", "visible", s.MarginsVisible)
	return c.applyMargins(d, s.Margins)
}

// ToggleRulers flips ruler visibility.
func (c *Controller) ToggleRulers() {
	c.update(func(s *State) { s.RulersVisible = !s.RulersVisible })
}

// ToggleCharacterCount flips the character count display.
func (c *Controller) ToggleCharacterCount() {
	c.update(func(s *State) { s.CharacterCountVisible = !s.CharacterCountVisible })
}

// SetZoom selects a zoom percentage from page.ZoomOptions.
func (c *Controller) SetZoom(zoom int) error {
	if !page.ValidZoom(zoom) {
		return fmt.Errorf("%w: %d", ErrInvalidZoom, zoom)
	}
	c.update(func(s *State) { s.Zoom = zoom })
	return nil
}

// SetPageSize resizes every page and resets its padding to the size's
// default, in one update.
func (c *Controller) SetPageSize(d *doc.Document, id page.SizeID) error {
	sz, ok := page.Lookup(id)
	if !ok {
		c.logger.Warn("unknown page size", "size", id)
		return fmt.Errorf("%w: %q", ErrUnknownPageSize, id)
	}
	s := c.update(func(s *State) {
		s.PageSize = id
		s.Margins = page.Uniform(sz.Padding)
	})
	attrs := extension.SizeAttrs(sz).Merge(extension.PaddingAttrs(s.Margins))
	_, err := ops.Update(d, ops.UpdateOptions{Type: doc.TypePage, Attrs: attrs})
	return c.report("set page size", err)
}

// ChangeMargin sets one edge, clamped to [0, page dimension], and writes all
// four padding attributes to every page.
func (c *Controller) ChangeMargin(d *doc.Document, edge page.Edge, value float64) error {
	s := c.update(func(s *State) {
		sz := s.Size()
		v := page.Clamp(value, page.Dimension(edge, sz.Width, sz.Height))
		s.Margins = s.Margins.With(edge, v)
	})
	return c.applyMargins(d, s.Margins)
}

// InsertPageBreak adds a page after the page enclosing the selection. The
// new page gets a placeholder paragraph, plus header, footer and watermark
// when those are on.
func (c *Controller) InsertPageBreak(d *doc.Document) error {
	if d == nil {
		return nil
	}
	sel := d.Selection()
	enclosing, ok := d.Closest(sel.From, doc.TypePage)
	if !ok {
		c.logger.Warn("no page block at selection", "pos", sel.From)
		return ErrNoEnclosingPage
	}
	at := enclosing.To
	if at > d.ContentSize() {
		at = d.ContentSize()
	}

	s := c.State()
	index := enclosing.Node.Attrs().Int(extension.AttrPageIndex) + 1
	var content []doc.Content
	if s.HeaderFooterVisible {
		content = append(content, doc.Elem(doc.TypeHeader, nil, doc.Text(NewPageText)))
	}
	content = append(content, doc.Elem(doc.TypeParagraph, nil, doc.Text(NewPageText)))
	if s.HeaderFooterVisible {
		content = append(content, doc.Elem(doc.TypeFooter, nil, doc.Text(NewPageText)))
	}
	if s.WatermarkEnabled {
		content = append(content, doc.Elem(doc.TypeWatermark, doc.Attrs{"text": s.watermarkText()}))
	}
	newPage := doc.Elem(doc.TypePage, extension.PageAttrs(s.Size(), s.Margins, index), content...)

	tx := d.Begin()
	if err := tx.Insert(at, newPage); err != nil {
		tx.Discard()
		return c.report("insert page break", err)
	}
	if err := tx.Commit(); err != nil {
		return c.report("insert page break", err)
	}
	c.logger.Debug("page break inserted", "at", at, "index", index)

	if c.renumber {
		_, err := ops.RenumberPages(d)
		return c.report("renumber pages", err)
	}
	return nil
}

func (c *Controller) insertHeaderFooter(d *doc.Document) error {
	if _, err := ops.Insert(d, ops.InsertOptions{
		Type:     doc.TypeHeader,
		Inside:   doc.TypePage,
		Position: ops.PositionStart,
	}); err != nil {
		return c.report("insert headers", err)
	}
	_, err := ops.Insert(d, ops.InsertOptions{
		Type:     doc.TypeFooter,
		Inside:   doc.TypePage,
		Position: ops.PositionEnd,
	})
	return c.report("insert footers", err)
}

func (c *Controller) removeHeaderFooter(d *doc.Document) error {
	if _, err := ops.Delete(d, ops.DeleteOptions{Type: doc.TypeHeader}); err != nil {
		return c.report("remove headers", err)
	}
	_, err := ops.Delete(d, ops.DeleteOptions{Type: doc.TypeFooter})
	return c.report("remove footers", err)
}

func (c *Controller) insertWatermarks(d *doc.Document, text string) error {
	_, err := ops.Insert(d, ops.InsertOptions{
		Type:     doc.TypeWatermark,
		Attrs:    doc.Attrs{"text": text},
		Inside:   doc.TypePage,
		Position: ops.PositionEnd,
	})
	return c.report("insert watermarks", err)
}

func (c *Controller) applyMargins(d *doc.Document, m page.Margins) error {
	_, err := ops.Update(d, ops.UpdateOptions{Type: doc.TypePage, Attrs: extension.PaddingAttrs(m)})
	return c.report("apply margins", err)
}

// report logs a failed document edit and returns it wrapped.
func (c *Controller) report(action string, err error) error {
	if err == nil {
		return nil
	}
	c.logger.Warn("toolbar action aborted", "action", action, "err", err)
	return fmt.Errorf("%s: %w", action, err)
}
