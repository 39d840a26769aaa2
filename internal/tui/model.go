// Package tui is the terminal page editor: it renders the pages of a
// document with their header, footer, watermark and ruler, and maps keys and
// mouse gestures onto the page and text toolbars.
package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/eykd/pagemark-go/internal/codec"
	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/page"
	"github.com/eykd/pagemark-go/internal/pagination"
	"github.com/eykd/pagemark-go/internal/ruler"
	"github.com/eykd/pagemark-go/internal/toolbar"
)

// ScrollThreshold is how many lines ahead of the viewport top a page may
// start and still count as the current page.
const ScrollThreshold = 2

var errNoSave = errors.New("save: no destination")

// Test seams.
var (
	clipboardWriteFn = clipboard.WriteAll
	runProgramFn     = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
		return err
	}
)

// Options configures a Model. Only Document is required.
type Options struct {
	Document   *doc.Document
	Controller *toolbar.Controller
	Text       *toolbar.TextToolbar
	Codec      *codec.Codec
	Logger     *slog.Logger
	// Save persists the document; ctrl+s is disabled when nil.
	Save  func(*doc.Document) error
	Title string
}

type mode int

const (
	modeNormal mode = iota
	modePageInput
	modeDialog
)

// Model is the bubbletea model of the editor.
type Model struct {
	doc    *doc.Document
	ctl    *toolbar.Controller
	text   *toolbar.TextToolbar
	codec  *codec.Codec
	logger *slog.Logger
	save   func(*doc.Document) error
	title  string

	tracker *pagination.Tracker
	drag    *ruler.Drag
	gesture uuid.UUID
	cancel  func()

	keys   keyMap
	help   help.Model
	input  textinput.Model
	mode   mode
	dialog toolbar.DialogRequest

	width, height int
	scroll        int
	anchor, head  int
	status        string
	failed        bool
	dirty         bool
}

// New builds the editor model for opts.Document.
func New(opts Options) *Model {
	m := &Model{
		doc:    opts.Document,
		ctl:    opts.Controller,
		text:   opts.Text,
		codec:  opts.Codec,
		logger: opts.Logger,
		save:   opts.Save,
		title:  opts.Title,
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  textinput.New(),
		width:  100,
		height: 40,
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.ctl == nil {
		m.ctl = toolbar.New(toolbar.WithLogger(m.logger))
	}
	if m.text == nil {
		m.text = toolbar.NewTextToolbar(m.logger)
	}
	if m.codec == nil {
		m.codec = codec.Default()
	}
	if m.title == "" {
		m.title = "pagemark"
	}
	m.input.CharLimit = 256
	m.drag = ruler.NewDrag(func(e page.Edge, v float64) error {
		return m.ctl.ChangeMargin(m.doc, e, v)
	})
	m.tracker = pagination.NewTracker(m.doc,
		pagination.WithScroller(m),
		pagination.WithScrollThreshold(ScrollThreshold),
		pagination.WithLogger(m.logger),
	)
	m.cancel = m.doc.OnChange(func(*doc.Document) { m.dirty = true })
	sel := m.doc.Selection()
	if sel.From == 0 && sel.To == 0 {
		pos := firstCursor(m.doc)
		m.doc.SetSelection(pos, pos)
		sel = m.doc.Selection()
	}
	m.anchor, m.head = sel.From, sel.To
	return m
}

// firstCursor returns the start of the first text block's content, or 0
// when the document holds none.
func firstCursor(d *doc.Document) int {
	pos := 0
	d.Descendants(func(n *doc.Node, at int) bool {
		if pos > 0 {
			return false
		}
		switch n.Type() {
		case doc.TypeParagraph, doc.TypeHeading:
			pos = at + 1
			return false
		}
		return true
	})
	return pos
}

// Run shows the editor until the user quits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	return runProgramFn(m)
}

// Close detaches the model from its document.
func (m *Model) Close() {
	m.tracker.Close()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Dirty reports whether the document changed since it was last saved.
func (m *Model) Dirty() bool { return m.dirty }

// Stats returns the current pagination stats.
func (m *Model) Stats() pagination.Stats { return m.tracker.Stats() }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m, m.updateInput(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Keys
// ──────────────────────────────────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	d := m.doc
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Save):
		m.saveDocument()
	case key.Matches(msg, k.Copy):
		m.copyHTML()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, k.HeaderFooter):
		m.report("header/footer", m.ctl.ToggleHeaderFooter(d))
	case key.Matches(msg, k.Watermark):
		m.report("watermark", m.ctl.ToggleWatermark(d))
	case key.Matches(msg, k.Margins):
		m.report("margins", m.ctl.ToggleMargins(d))
	case key.Matches(msg, k.Rulers):
		m.ctl.ToggleRulers()
	case key.Matches(msg, k.CharacterCount):
		m.ctl.ToggleCharacterCount()
	case key.Matches(msg, k.PageSize):
		m.cyclePageSize()
	case key.Matches(msg, k.ZoomIn):
		m.stepZoom(1)
	case key.Matches(msg, k.ZoomOut):
		m.stepZoom(-1)
	case key.Matches(msg, k.PageBreak):
		m.report("page break", m.ctl.InsertPageBreak(d))

	case key.Matches(msg, k.NextPage):
		m.tracker.NextPage()
	case key.Matches(msg, k.PrevPage):
		m.tracker.PrevPage()
	case key.Matches(msg, k.GoToPage):
		m.openPageInput()
	case key.Matches(msg, k.ScrollUp):
		m.scrollBy(-1)
	case key.Matches(msg, k.ScrollDown):
		m.scrollBy(1)
	case key.Matches(msg, k.Left):
		m.moveCursor(-1, false)
	case key.Matches(msg, k.Right):
		m.moveCursor(1, false)
	case key.Matches(msg, k.ExtendLeft):
		m.moveCursor(-1, true)
	case key.Matches(msg, k.ExtendRight):
		m.moveCursor(1, true)

	case key.Matches(msg, k.Bold):
		m.report("bold", m.text.ToggleBold(d))
	case key.Matches(msg, k.Italic):
		m.report("italic", m.text.ToggleItalic(d))
	case key.Matches(msg, k.Underline):
		m.report("underline", m.text.ToggleUnderline(d))
	case key.Matches(msg, k.Strike):
		m.report("strike", m.text.ToggleStrike(d))
	case key.Matches(msg, k.Highlight):
		m.report("highlight", m.text.ToggleHighlight(d, ""))
	case key.Matches(msg, k.Baseline):
		m.report("baseline", m.text.ToggleBaseline(d))
	case key.Matches(msg, k.Superscript):
		m.report("superscript", m.text.ToggleSuperscript(d))
	case key.Matches(msg, k.Subscript):
		m.report("subscript", m.text.ToggleSubscript(d))
	case key.Matches(msg, k.AlignLeft):
		m.report("align left", m.text.SetTextAlign(d, "left"))
	case key.Matches(msg, k.AlignCenter):
		m.report("align center", m.text.SetTextAlign(d, "center"))
	case key.Matches(msg, k.AlignRight):
		m.report("align right", m.text.SetTextAlign(d, "right"))
	case key.Matches(msg, k.AlignJustify):
		m.report("justify", m.text.SetTextAlign(d, "justify"))

	case key.Matches(msg, k.Link):
		return m.openDialog(toolbar.DialogLink)
	case key.Matches(msg, k.Image):
		return m.openDialog(toolbar.DialogImage)
	case key.Matches(msg, k.Table):
		return m.openDialog(toolbar.DialogTable)
	case key.Matches(msg, k.LineSpacing):
		return m.openDialog(toolbar.DialogLineSpacing)
	case key.Matches(msg, k.ParagraphSpacing):
		return m.openDialog(toolbar.DialogParagraphSpacing)
	}
	return nil
}

func (m *Model) report(action string, err error) {
	if err != nil {
		m.status, m.failed = err.Error(), true
		return
	}
	m.status, m.failed = action, false
}

func (m *Model) saveDocument() {
	if m.save == nil {
		m.report("", errNoSave)
		return
	}
	if err := m.save(m.doc); err != nil {
		m.report("", err)
		return
	}
	m.dirty = false
	m.report("saved", nil)
}

func (m *Model) copyHTML() {
	out, err := m.codec.RenderString(m.doc)
	if err == nil {
		err = clipboardWriteFn(out)
	}
	if err != nil {
		m.logger.Warn("copy failed", "err", err)
		m.report("", fmt.Errorf("copy: %w", err))
		return
	}
	m.report("copied html", nil)
}

func (m *Model) cyclePageSize() {
	cur := m.ctl.State().PageSize
	i := slices.IndexFunc(page.Sizes, func(s page.Size) bool { return s.ID == cur })
	next := page.Sizes[(i+1)%len(page.Sizes)]
	m.report("page size "+string(next.ID), m.ctl.SetPageSize(m.doc, next.ID))
}

func (m *Model) stepZoom(delta int) {
	i := slices.Index(page.ZoomOptions, m.ctl.State().Zoom)
	if i < 0 {
		i = slices.Index(page.ZoomOptions, page.DefaultZoom)
	}
	i = min(max(i+delta, 0), len(page.ZoomOptions)-1)
	z := page.ZoomOptions[i]
	m.report("zoom "+strconv.Itoa(z)+"%", m.ctl.SetZoom(z))
}

func (m *Model) moveCursor(delta int, extend bool) {
	m.head = min(max(m.head+delta, 0), m.doc.ContentSize())
	if !extend {
		m.anchor = m.head
	}
	m.doc.SetSelection(m.anchor, m.head)
}

// ──────────────────────────────────────────────────────────────────────────────
// Input line
// ──────────────────────────────────────────────────────────────────────────────

func (m *Model) openPageInput() {
	m.mode = modePageInput
	m.input.Prompt = "Go to page: "
	m.input.SetValue(strconv.Itoa(m.tracker.Stats().CurrentPage))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) openDialog(kind toolbar.DialogKind) tea.Cmd {
	req, err := m.text.Request(kind)
	if err != nil {
		m.report("", err)
		return nil
	}
	m.mode = modeDialog
	m.dialog = req
	m.input.Prompt = req.Prompt + " "
	m.input.SetValue(req.Default)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() (mode, string) {
	md, value := m.mode, m.input.Value()
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
	return md, value
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		md, value := m.closeInput()
		if md == modePageInput {
			if n, ok := m.tracker.GoToInput(value); ok {
				m.report("page "+strconv.Itoa(n), nil)
			} else {
				m.report("", fmt.Errorf("%w: %q is not a page number", toolbar.ErrInvalidInput, value))
			}
			return nil
		}
		m.report(string(m.dialog.Kind), m.text.Resolve(m.doc, m.dialog, value, true))
		return nil
	case tea.KeyEsc, tea.KeyCtrlC:
		if md, _ := m.closeInput(); md == modeDialog {
			m.report("cancelled", m.text.Resolve(m.doc, m.dialog, "", false))
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// ──────────────────────────────────────────────────────────────────────────────
// Ruler drag
// ──────────────────────────────────────────────────────────────────────────────

// rulerTop is the first screen row of the ruler, right below the toolbar.
const rulerTop = 1

func (m *Model) onRuler(y int) bool {
	return m.ctl.State().RulersVisible && y >= rulerTop && y < rulerTop+3
}

// pointer converts a screen column into ruler pixels. The ruler starts one
// cell in, aligned with the inside of the page border.
func pointer(x int) float64 { return float64(x-1) * ColumnPixels }

func (m *Model) layout() ruler.Layout {
	s := m.ctl.State()
	return ruler.NewLayout(s.Size(), s.Zoom, s.Margins)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.onRuler(msg.Y) {
			return
		}
		l := m.layout()
		edge, ok := ruler.Compute(l).HitMarker(ruler.Horizontal, pointer(msg.X), ColumnPixels)
		if !ok {
			return
		}
		token, err := m.drag.Begin(edge, pointer(msg.X), l)
		if err != nil {
			m.report("", err)
			return
		}
		m.gesture = token
	case tea.MouseActionMotion:
		if m.gesture == uuid.Nil {
			return
		}
		edge, _ := m.drag.Active()
		v, err := m.drag.Move(m.gesture, pointer(msg.X))
		m.report(fmt.Sprintf("%s margin %s", edge, page.FormatInches(v)), err)
	case tea.MouseActionRelease:
		if m.gesture == uuid.Nil {
			return
		}
		if err := m.drag.End(m.gesture); err != nil {
			m.logger.Debug("drag end", "err", err)
		}
		m.gesture = uuid.Nil
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Scrolling
// ──────────────────────────────────────────────────────────────────────────────

func (m *Model) scrollBy(delta int) {
	lines, offsets := m.renderPages()
	m.scroll = min(max(m.scroll+delta, 0), max(len(lines)-1, 0))
	m.tracker.ObserveScroll(float64(m.scroll), offsets)
}

// ScrollToPage implements pagination.Scroller.
func (m *Model) ScrollToPage(index int) bool {
	_, offsets := m.renderPages()
	for _, o := range offsets {
		if o.Index == index {
			m.scroll = int(o.Top)
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// View
// ──────────────────────────────────────────────────────────────────────────────

// View implements tea.Model.
func (m *Model) View() string {
	s := m.ctl.State()
	var top []string
	top = append(top, m.toolbarLine(s))
	if s.RulersVisible {
		r := ruler.Compute(m.layout())
		for _, l := range strings.Split(RenderRuler(r), "\n") {
			top = append(top, " "+l)
		}
	}

	var bottom []string
	bottom = append(bottom, m.footerLine(s))
	if m.mode != modeNormal {
		bottom = append(bottom, m.input.View())
	}
	if m.status != "" {
		style := statusStyle
		if m.failed {
			style = errorStyle
		}
		bottom = append(bottom, style.Render(m.status))
	}
	bottom = append(bottom, m.help.View(m.keys))

	body, _ := m.renderPages()
	room := max(m.height-len(top)-len(bottom), 3)
	start := min(m.scroll, max(len(body)-1, 0))
	end := min(start+room, len(body))

	out := append(top, body[start:end]...)
	out = append(out, bottom...)
	return strings.Join(out, "\n")
}

func flag(name string, on bool) string {
	if on {
		return onStyle.Render("● " + name)
	}
	return offStyle.Render("○ " + name)
}

func (m *Model) toolbarLine(s toolbar.State) string {
	parts := []string{
		titleStyle.Render(m.title),
		barStyle.Render(fmt.Sprintf("%s %d%%", s.PageSize, s.Zoom)),
		flag("header/footer", s.HeaderFooterVisible),
		flag("margins", s.MarginsVisible),
		flag("watermark", s.WatermarkEnabled),
		flag("rulers", s.RulersVisible),
		flag("count", s.CharacterCountVisible),
	}
	return strings.Join(parts, "  ")
}

func (m *Model) footerLine(s toolbar.State) string {
	st := m.tracker.Stats()
	parts := []string{fmt.Sprintf("Page %d of %d", st.CurrentPage, st.TotalPages)}
	if s.CharacterCountVisible {
		parts = append(parts, fmt.Sprintf("%d characters", st.TotalCharacters))
	}
	if m.dirty {
		parts = append(parts, "modified")
	}
	return barStyle.Render(strings.Join(parts, " · "))
}
