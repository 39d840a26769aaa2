package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/pagination"
)

// RowsPerInch is the vertical resolution used for top and bottom margins.
const RowsPerInch = 2

// maxMarginRows caps the blank rows a vertical margin may take.
const maxMarginRows = 3

// renderPages lays out every page as a bordered box and returns the body
// lines together with the first line of each page.
func (m *Model) renderPages() ([]string, []pagination.PageOffset) {
	s := m.ctl.State()
	zoom := float64(s.Zoom) / 100
	current := m.tracker.Stats().CurrentPage
	r := blockRenderer{sel: m.doc.Selection()}

	var lines []string
	var offsets []pagination.PageOffset
	pos, index := 0, 0
	for _, n := range m.doc.Root().Children() {
		if n.Type() != doc.TypePage {
			lines = append(lines, r.block(n, pos, "")...)
			pos += n.Size()
			continue
		}
		index++
		offsets = append(offsets, pagination.PageOffset{Index: index, Top: float64(len(lines))})
		width, _ := extension.DimensionsOf(n)
		if width <= 0 {
			width = s.Size().Width
		}
		box := r.page(n, pos, pageColumns(width, zoom), zoom, index == current)
		lines = append(lines, strings.Split(box, "\n")...)
		lines = append(lines, "")
		pos += n.Size()
	}
	return lines, offsets
}

type blockRenderer struct {
	sel doc.Selection
}

func (r blockRenderer) page(n *doc.Node, pos, cols int, zoom float64, current bool) string {
	mg := extension.MarginsOf(n)
	left := int(math.Round(mg.Left * ColumnsPerInch * zoom))
	right := int(math.Round(mg.Right * ColumnsPerInch * zoom))
	if avail := cols - 8; left+right > avail {
		left = avail * left / max(left+right, 1)
		right = avail - left
	}
	top := min(int(math.Round(mg.Top*RowsPerInch*zoom)), maxMarginRows)
	bottom := min(int(math.Round(mg.Bottom*RowsPerInch*zoom)), maxMarginRows)
	textWidth := cols - left - right

	var header, footer, body []string
	watermark := ""
	p := pos + 1
	for _, ch := range n.Children() {
		switch ch.Type() {
		case doc.TypeHeader:
			header = append(header, bandStyle.Render(r.inline(ch, p+1, lipgloss.NewStyle())))
		case doc.TypeFooter:
			footer = append(footer, bandStyle.Render(r.inline(ch, p+1, lipgloss.NewStyle())))
		case doc.TypeWatermark:
			watermark = ch.Attrs().String("text")
		default:
			body = append(body, r.block(ch, p, "")...)
		}
		p += ch.Size()
	}

	rule := bandStyle.Render(strings.Repeat("╌", max(textWidth, 1)))
	var content []string
	if header != nil {
		content = append(content, header...)
		content = append(content, rule)
	}
	content = append(content, body...)
	if watermark != "" {
		content = append(content, watermarkStyle.Width(textWidth).Render(watermark))
	}
	if footer != nil {
		content = append(content, rule)
		content = append(content, footer...)
	}

	style := pageStyle
	if current {
		style = currentPageStyle
	}
	return style.Width(cols).Padding(top, right, bottom, left).Render(strings.Join(content, "\n"))
}

// block renders n, which starts at pos, as one or more lines.
func (r blockRenderer) block(n *doc.Node, pos int, prefix string) []string {
	switch n.Type() {
	case doc.TypeParagraph, doc.TypeCodeBlock:
		return []string{prefix + r.inline(n, pos+1, lipgloss.NewStyle())}
	case doc.TypeHeading:
		return []string{prefix + r.inline(n, pos+1, lipgloss.NewStyle().Bold(true))}
	case doc.TypeBulletList, doc.TypeOrderedList:
		var out []string
		p := pos + 1
		for i, item := range n.Children() {
			bullet := "• "
			if n.Type() == doc.TypeOrderedList {
				bullet = strconv.Itoa(i+1) + ". "
			}
			indent := strings.Repeat(" ", lipgloss.Width(bullet))
			out = append(out, r.children(item, p, prefix+bullet, prefix+indent)...)
			p += item.Size()
		}
		return out
	case doc.TypeListItem:
		return r.children(n, pos, prefix, prefix)
	case doc.TypeBlockquote:
		return r.children(n, pos, prefix+"│ ", prefix+"│ ")
	case doc.TypeTable:
		var out []string
		for _, row := range n.Children() {
			var cells []string
			for _, cell := range row.Children() {
				cells = append(cells, cell.TextContent())
			}
			out = append(out, prefix+strings.Join(cells, " │ "))
		}
		return out
	case doc.TypeImage:
		return []string{prefix + "[image " + n.Attrs().String("src") + "]"}
	case doc.TypeWatermark:
		return nil
	}
	return []string{prefix + n.TextContent()}
}

func (r blockRenderer) children(n *doc.Node, pos int, first, rest string) []string {
	var out []string
	p := pos + 1
	for i, ch := range n.Children() {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		out = append(out, r.block(ch, p, prefix)...)
		p += ch.Size()
	}
	return out
}

// inline renders the runs of a textblock whose content starts at start,
// showing marks, the selection and a collapsed cursor.
func (r blockRenderer) inline(n *doc.Node, start int, base lipgloss.Style) string {
	var b strings.Builder
	p := start
	for _, ch := range n.Children() {
		switch {
		case ch.IsText():
			b.WriteString(r.run([]rune(ch.Text()), p, markStyle(base, ch)))
		case ch.Type() == doc.TypeHardBreak:
			b.WriteString(r.run([]rune(" "), p, base))
		}
		p += ch.Size()
	}
	if r.sel.From == r.sel.To && r.sel.From == p {
		b.WriteString(cursorStyle.Render(" "))
	}
	return b.String()
}

func (r blockRenderer) highlighted(pos int) bool {
	if r.sel.From == r.sel.To {
		return pos == r.sel.From
	}
	return pos >= r.sel.From && pos < r.sel.To
}

func (r blockRenderer) run(text []rune, start int, style lipgloss.Style) string {
	var b strings.Builder
	seg := 0
	for i := 1; i <= len(text); i++ {
		if i < len(text) && r.highlighted(start+i) == r.highlighted(start+seg) {
			continue
		}
		st := style
		if r.highlighted(start + seg) {
			st = style.Reverse(true)
		}
		b.WriteString(st.Render(string(text[seg:i])))
		seg = i
	}
	return b.String()
}

func markStyle(base lipgloss.Style, n *doc.Node) lipgloss.Style {
	s := base
	if n.HasMark(doc.MarkBold) {
		s = s.Bold(true)
	}
	if n.HasMark(doc.MarkItalic) {
		s = s.Italic(true)
	}
	if n.HasMark(doc.MarkUnderline) || n.HasMark(doc.MarkLink) {
		s = s.Underline(true)
	}
	if n.HasMark(doc.MarkStrike) {
		s = s.Strikethrough(true)
	}
	if n.HasMark(doc.MarkCode) {
		s = s.Faint(true)
	}
	return s
}
