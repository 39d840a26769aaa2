// Package pagination derives page statistics from a document and tracks
// which page the reader is on.
package pagination

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/eykd/pagemark-go/internal/doc"
)

// DefaultScrollThreshold is how far (in pixels) ahead of the viewport top a
// page may start and still count as the current page.
const DefaultScrollThreshold = 100

// Stats summarises a document's pages.
type Stats struct {
	TotalCharacters int           `json:"totalCharacters"`
	TotalPages      int           `json:"totalPages"`
	CurrentPage     int           `json:"currentPage"`
	Pages           [][]*doc.Node `json:"-"`
}

// Compute walks d once. Every page node closes the group collected so far
// (when non-empty); every other node joins the current group.
func Compute(d *doc.Document) Stats {
	var pages [][]*doc.Node
	var current []*doc.Node
	d.Descendants(func(n *doc.Node, _ int) bool {
		if n.Type() == doc.TypePage {
			if len(current) > 0 {
				pages = append(pages, current)
				current = nil
			}
		} else {
			current = append(current, n)
		}
		return true
	})
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return Stats{
		TotalCharacters: utf8.RuneCountInString(d.TextContent()),
		TotalPages:      len(pages),
		Pages:           pages,
	}
}

// Scroller brings the page with a given pageIndex into view. It reports
// false when no such page is rendered.
type Scroller interface {
	ScrollToPage(index int) bool
}

// PageOffset is the rendered top of one page, in pixels from the top of
// the scroll container.
type PageOffset struct {
	Index int
	Top   float64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithScroller sets the view that navigation scrolls.
func WithScroller(s Scroller) Option {
	return func(t *Tracker) { t.scroller = s }
}

// WithScrollThreshold overrides DefaultScrollThreshold.
func WithScrollThreshold(px float64) Option {
	return func(t *Tracker) { t.threshold = px }
}

// WithLogger sets the logger for navigation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// Tracker keeps Stats current by recomputing on every document change.
type Tracker struct {
	mu        sync.Mutex
	stats     Stats
	scroller  Scroller
	threshold float64
	logger    *slog.Logger
	cancel    func()
}

// NewTracker computes stats for d and subscribes to its changes.
func NewTracker(d *doc.Document, opts ...Option) *Tracker {
	t := &Tracker{
		threshold: DefaultScrollThreshold,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.stats = Compute(d)
	t.stats.CurrentPage = 1
	t.cancel = d.OnChange(t.refresh)
	return t
}

func (t *Tracker) refresh(d *doc.Document) {
	s := Compute(d)
	t.mu.Lock()
	defer t.mu.Unlock()
	s.CurrentPage = t.stats.CurrentPage
	if s.CurrentPage > s.TotalPages {
		s.CurrentPage = max(s.TotalPages, 1)
	}
	t.stats = s
	t.logger.Debug("pagination recomputed", "pages", s.TotalPages, "characters", s.TotalCharacters)
}

// Close stops tracking changes.
func (t *Tracker) Close() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Stats returns the latest stats.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// GoToPage navigates to page n, clamped to [1, TotalPages], and returns
// the resulting current page. When a scroller is set and cannot find the
// page, the current page is left unchanged.
func (t *Tracker) GoToPage(n int) int {
	t.mu.Lock()
	total := t.stats.TotalPages
	scroller := t.scroller
	t.mu.Unlock()

	n = clampPage(n, total)
	if scroller != nil && !scroller.ScrollToPage(n) {
		t.logger.Warn("page not rendered", "page", n)
		return t.Stats().CurrentPage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.CurrentPage = n
	return n
}

// NextPage moves one page forward, stopping at the last page.
func (t *Tracker) NextPage() int {
	return t.GoToPage(t.Stats().CurrentPage + 1)
}

// PrevPage moves one page back, stopping at the first page.
func (t *Tracker) PrevPage() int {
	return t.GoToPage(t.Stats().CurrentPage - 1)
}

// GoToInput navigates to the page typed by the user. Non-numeric input is
// ignored and reported as false.
func (t *Tracker) GoToInput(s string) (int, bool) {
	n, ok := ParsePageInput(s)
	if !ok {
		return t.Stats().CurrentPage, false
	}
	return t.GoToPage(n), true
}

// ObserveScroll sets the current page from the scroll position: the last
// page whose top, less the threshold, is at or above scrollTop. When no
// page qualifies the current page becomes 0.
func (t *Tracker) ObserveScroll(scrollTop float64, offsets []PageOffset) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	found := 0
	for _, o := range offsets {
		if o.Top-t.threshold <= scrollTop {
			found = o.Index
		}
	}
	t.stats.CurrentPage = found
	return found
}

// ParsePageInput parses a page number typed by the user, clamping it to at
// least 1.
func ParsePageInput(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return max(n, 1), true
}

func clampPage(n, total int) int {
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}
