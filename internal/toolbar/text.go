package toolbar

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/doc/ops"
	"github.com/eykd/pagemark-go/internal/extension"
)

// Font choices offered by the text toolbar.
var (
	FontFamilies = []string{"Avenir Next", "Arial", "Times New Roman", "Helvetica"}
	FontSizes    = []string{"10", "12", "14", "16", "18", "20"}
	FontStyles   = []string{"Regular", "Title", "Subtitle", "Body", "Heading 1", "Heading 2", "Heading 3"}
)

// HighlightColor is the background applied by ToggleHighlight when no
// color is given.
const HighlightColor = "#fffbeb"

// TextToolbar applies character and block formatting to the selection of
// the document it is handed.
type TextToolbar struct {
	logger *slog.Logger
}

// NewTextToolbar returns a text toolbar logging to l (nil discards).
func NewTextToolbar(l *slog.Logger) *TextToolbar {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TextToolbar{logger: l}
}

// ToggleMark removes mark t from the selection when every selected run
// already carries it, and adds it otherwise. A collapsed selection is left
// alone.
func (t *TextToolbar) ToggleMark(d *doc.Document, mt doc.MarkType) error {
	if d == nil {
		return nil
	}
	sel := d.Selection()
	runs := selectedRuns(d, sel)
	if len(runs) == 0 {
		return nil
	}
	all := true
	for _, r := range runs {
		if !r.HasMark(mt) {
			all = false
			break
		}
	}
	tx := d.Begin()
	var err error
	if all {
		err = tx.RemoveMark(sel.From, sel.To, mt)
	} else {
		err = tx.AddMark(sel.From, sel.To, doc.Mark{Type: mt})
	}
	if err != nil {
		tx.Discard()
		return t.report("toggle "+string(mt), err)
	}
	return t.report("toggle "+string(mt), tx.Commit())
}

// ToggleBold toggles bold on the selection.
func (t *TextToolbar) ToggleBold(d *doc.Document) error { return t.ToggleMark(d, doc.MarkBold) }

// ToggleItalic toggles italic on the selection.
func (t *TextToolbar) ToggleItalic(d *doc.Document) error { return t.ToggleMark(d, doc.MarkItalic) }

// ToggleUnderline toggles underline on the selection.
func (t *TextToolbar) ToggleUnderline(d *doc.Document) error {
	return t.ToggleMark(d, doc.MarkUnderline)
}

// ToggleStrike toggles strikethrough on the selection.
func (t *TextToolbar) ToggleStrike(d *doc.Document) error { return t.ToggleMark(d, doc.MarkStrike) }

// SetTextAlign aligns every paragraph and heading touched by the selection.
func (t *TextToolbar) SetTextAlign(d *doc.Document, align string) error {
	if !slices.Contains(extension.Alignments, align) {
		return fmt.Errorf("%w: %q", ErrInvalidAlignment, align)
	}
	return t.updateBlocks(d, "align", func(doc.Attrs) doc.Attrs {
		return doc.Attrs{"textAlign": align}
	})
}

// SetFontFamily merges font-family into the selection's style span.
func (t *TextToolbar) SetFontFamily(d *doc.Document, family string) error {
	return t.appendInlineStyle(d, map[string]string{"font-family": family}, "")
}

// SetFontSize merges font-size into the selection's style span. Bare
// numbers are taken as pixels.
func (t *TextToolbar) SetFontSize(d *doc.Document, size string) error {
	if _, err := strconv.ParseFloat(size, 64); err == nil {
		size += "px"
	}
	return t.appendInlineStyle(d, map[string]string{"font-size": size}, "")
}

// SetFontStyle adds a named style class to the selection's style span.
func (t *TextToolbar) SetFontStyle(d *doc.Document, style string) error {
	return t.appendInlineStyle(d, nil, style)
}

// ToggleBaseline flips the textStyle decoration between underline and none.
func (t *TextToolbar) ToggleBaseline(d *doc.Document) error {
	current := currentMark(d, doc.MarkTextStyle).String("textDecoration")
	next := "underline"
	if strings.Contains(current, "underline") {
		next = "none"
	}
	return t.setTextStyle(d, doc.Attrs{"textDecoration": next})
}

// ToggleHighlight sets the selection's background color; an empty color
// means HighlightColor.
func (t *TextToolbar) ToggleHighlight(d *doc.Document, color string) error {
	if color == "" {
		color = HighlightColor
	}
	return t.setTextStyle(d, doc.Attrs{"backgroundColor": color})
}

// SetTextColor sets the selection's foreground color.
func (t *TextToolbar) SetTextColor(d *doc.Document, color string) error {
	return t.setTextStyle(d, doc.Attrs{"color": color})
}

// ToggleSubscript lowers and shrinks the selection.
func (t *TextToolbar) ToggleSubscript(d *doc.Document) error {
	return t.setTextStyle(d, doc.Attrs{"verticalAlign": "sub", "fontSize": "smaller"})
}

// ToggleSuperscript raises and shrinks the selection.
func (t *TextToolbar) ToggleSuperscript(d *doc.Document) error {
	return t.setTextStyle(d, doc.Attrs{"verticalAlign": "super", "fontSize": "smaller"})
}

// setTextStyle merges attrs into the textStyle mark of the selection.
func (t *TextToolbar) setTextStyle(d *doc.Document, attrs doc.Attrs) error {
	if d == nil {
		return nil
	}
	merged := currentMark(d, doc.MarkTextStyle).Merge(attrs)
	return t.setMark(d, doc.Mark{Type: doc.MarkTextStyle, Attrs: merged})
}

// appendInlineStyle merges CSS properties and classes into the style mark
// already on the selection. New properties win; classes accumulate.
func (t *TextToolbar) appendInlineStyle(d *doc.Document, props map[string]string, class string) error {
	if d == nil {
		return nil
	}
	current := currentMark(d, doc.MarkStyle)
	styles := extension.ParseStyle(current.String("style"))
	for k, v := range props {
		styles[k] = v
	}
	classes := strings.Fields(current.String("class"))
	for _, c := range strings.Fields(class) {
		if !slices.Contains(classes, c) {
			classes = append(classes, c)
		}
	}
	attrs := doc.Attrs{"style": extension.FormatStyle(styles), "class": strings.Join(classes, " ")}
	return t.setMark(d, doc.Mark{Type: doc.MarkStyle, Attrs: attrs})
}

func (t *TextToolbar) setMark(d *doc.Document, m doc.Mark) error {
	sel := d.Selection()
	if sel.From == sel.To {
		return nil
	}
	tx := d.Begin()
	if err := tx.AddMark(sel.From, sel.To, m); err != nil {
		tx.Discard()
		return t.report("set "+string(m.Type), err)
	}
	return t.report("set "+string(m.Type), tx.Commit())
}

// updateBlocks merges the attributes built by fn into every paragraph and
// heading the selection touches.
func (t *TextToolbar) updateBlocks(d *doc.Document, action string, fn func(current doc.Attrs) doc.Attrs) error {
	if d == nil {
		return nil
	}
	blocks := selectedBlocks(d, d.Selection())
	if len(blocks) == 0 {
		return nil
	}
	for _, n := range blocks {
		id := n.ID()
		_, err := ops.Update(d, ops.UpdateOptions{
			Type:      n.Type(),
			Predicate: func(m *doc.Node) bool { return m.ID() == id },
			Attrs:     fn(n.Attrs()),
		})
		if err != nil {
			return t.report(action, err)
		}
	}
	return nil
}

func (t *TextToolbar) report(action string, err error) error {
	if err == nil {
		return nil
	}
	t.logger.Warn("text action aborted", "action", action, "err", err)
	return fmt.Errorf("%s: %w", action, err)
}

// selectedRuns returns the text runs overlapping a non-empty selection.
func selectedRuns(d *doc.Document, sel doc.Selection) []*doc.Node {
	if sel.From == sel.To {
		return nil
	}
	var runs []*doc.Node
	d.Descendants(func(n *doc.Node, pos int) bool {
		if n.IsText() && pos < sel.To && pos+n.Size() > sel.From {
			runs = append(runs, n)
		}
		return true
	})
	return runs
}

// selectedBlocks returns the paragraphs and headings the selection touches;
// a cursor touches the block it sits in.
func selectedBlocks(d *doc.Document, sel doc.Selection) []*doc.Node {
	var blocks []*doc.Node
	d.Descendants(func(n *doc.Node, pos int) bool {
		if n.Type() != doc.TypeParagraph && n.Type() != doc.TypeHeading {
			return true
		}
		end := pos + n.Size()
		if sel.From == sel.To {
			if pos < sel.From && sel.From < end {
				blocks = append(blocks, n)
			}
		} else if pos < sel.To && sel.From < end {
			blocks = append(blocks, n)
		}
		return false
	})
	return blocks
}

// currentMark returns the attributes of the first mark of type mt on the
// selected text, or empty attributes.
func currentMark(d *doc.Document, mt doc.MarkType) doc.Attrs {
	if d == nil {
		return doc.Attrs{}
	}
	for _, r := range selectedRuns(d, d.Selection()) {
		for _, m := range r.Marks() {
			if m.Type == mt {
				return m.Attrs.Clone()
			}
		}
	}
	return doc.Attrs{}
}

// ──────────────────────────────────────────────────────────────────────────────
// Dialogs
// ──────────────────────────────────────────────────────────────────────────────

// DialogKind names an action that needs user input before it can run.
type DialogKind string

// Dialog-driven actions.
const (
	DialogLink             DialogKind = "link"
	DialogImage            DialogKind = "image"
	DialogTable            DialogKind = "table"
	DialogLineSpacing      DialogKind = "line-spacing"
	DialogParagraphSpacing DialogKind = "paragraph-spacing"
)

// DialogRequest describes the prompt the surface should show. The answer is
// passed back to Resolve.
type DialogRequest struct {
	Kind    DialogKind
	Prompt  string
	Default string
}

var dialogs = map[DialogKind]DialogRequest{
	DialogLink:             {Kind: DialogLink, Prompt: "Enter URL:"},
	DialogImage:            {Kind: DialogImage, Prompt: "Enter Image URL:"},
	DialogTable:            {Kind: DialogTable, Prompt: "Enter number of rows and columns as rows x columns, e.g. 2x2"},
	DialogLineSpacing:      {Kind: DialogLineSpacing, Prompt: "Enter line spacing:", Default: "1.5"},
	DialogParagraphSpacing: {Kind: DialogParagraphSpacing, Prompt: "Enter paragraph spacing:", Default: "1rem"},
}

// Request returns the prompt for a dialog-driven action.
func (t *TextToolbar) Request(kind DialogKind) (DialogRequest, error) {
	req, ok := dialogs[kind]
	if !ok {
		return DialogRequest{}, fmt.Errorf("%w: %q", ErrUnknownDialog, kind)
	}
	return req, nil
}

// Resolve completes a dialog. A cancelled dialog (ok false) or an empty
// answer changes nothing.
func (t *TextToolbar) Resolve(d *doc.Document, req DialogRequest, answer string, ok bool) error {
	answer = strings.TrimSpace(answer)
	if !ok || answer == "" || d == nil {
		return nil
	}
	switch req.Kind {
	case DialogLink:
		href, err := parseURL(answer)
		if err != nil {
			return err
		}
		return t.setMark(d, doc.Mark{Type: doc.MarkLink, Attrs: doc.Attrs{"href": href}})
	case DialogImage:
		src, err := parseURL(answer)
		if err != nil {
			return err
		}
		img := doc.Elem(doc.TypeImage, doc.Attrs{"src": src, "style": "max-width:100%"})
		return t.insertBlock(d, "insert image", img)
	case DialogTable:
		rows, cols, err := ParseTableSize(answer)
		if err != nil {
			return err
		}
		return t.insertBlock(d, "insert table", TableContent(rows, cols))
	case DialogLineSpacing:
		return t.updateBlocks(d, "line spacing", spacing("line-height", answer))
	case DialogParagraphSpacing:
		return t.updateBlocks(d, "paragraph spacing", spacing("margin-bottom", answer))
	}
	return fmt.Errorf("%w: %q", ErrUnknownDialog, req.Kind)
}

// spacing merges one CSS property into a block's style attribute.
func spacing(prop, value string) func(doc.Attrs) doc.Attrs {
	return func(current doc.Attrs) doc.Attrs {
		styles := extension.ParseStyle(current.String("style"))
		styles[prop] = value
		return doc.Attrs{"style": extension.FormatStyle(styles)}
	}
}

// insertBlock places c after the paragraph or heading holding the cursor.
func (t *TextToolbar) insertBlock(d *doc.Document, action string, c doc.Content) error {
	blocks := selectedBlocks(d, doc.Selection{From: d.Selection().From, To: d.Selection().From})
	if len(blocks) == 0 {
		t.logger.Warn("no text block at selection", "action", action)
		return ErrNoEnclosingBlock
	}
	target := blocks[0]
	var at int
	d.Descendants(func(n *doc.Node, pos int) bool {
		if n.ID() == target.ID() {
			at = pos + n.Size()
			return false
		}
		return true
	})
	tx := d.Begin()
	if err := tx.Insert(at, c); err != nil {
		tx.Discard()
		return t.report(action, err)
	}
	return t.report(action, tx.Commit())
}

func parseURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return u.String(), nil
}

// MaxTableSize bounds both dimensions of an inserted table.
const MaxTableSize = 100

// ParseTableSize parses "rows x columns" such as "2x3". Either dimension
// must lie in [1, MaxTableSize].
func ParseTableSize(s string) (rows, cols int, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: table size %q", ErrInvalidInput, s)
	}
	rows, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	cols, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || rows < 1 || cols < 1 || rows > MaxTableSize || cols > MaxTableSize {
		return 0, 0, fmt.Errorf("%w: table size %q", ErrInvalidInput, s)
	}
	return rows, cols, nil
}

// TableContent builds a rows x cols table whose cells read "Cell".
func TableContent(rows, cols int) doc.Content {
	table := doc.Elem(doc.TypeTable, nil)
	for i := 0; i < rows; i++ {
		row := doc.Elem(doc.TypeTableRow, nil)
		for j := 0; j < cols; j++ {
			row.Children = append(row.Children,
				doc.Elem(doc.TypeTableCell, nil, doc.Elem(doc.TypeParagraph, nil, doc.Text("Cell"))))
		}
		table.Children = append(table.Children, row)
	}
	return table
}
