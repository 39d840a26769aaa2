package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit             key.Binding
	Save             key.Binding
	Copy             key.Binding
	Help             key.Binding
	HeaderFooter     key.Binding
	Watermark        key.Binding
	Margins          key.Binding
	Rulers           key.Binding
	CharacterCount   key.Binding
	PageSize         key.Binding
	ZoomIn           key.Binding
	ZoomOut          key.Binding
	PageBreak        key.Binding
	NextPage         key.Binding
	PrevPage         key.Binding
	GoToPage         key.Binding
	ScrollUp         key.Binding
	ScrollDown       key.Binding
	Left             key.Binding
	Right            key.Binding
	ExtendLeft       key.Binding
	ExtendRight      key.Binding
	Bold             key.Binding
	Italic           key.Binding
	Underline        key.Binding
	Strike           key.Binding
	Highlight        key.Binding
	Baseline         key.Binding
	Superscript      key.Binding
	Subscript        key.Binding
	AlignLeft        key.Binding
	AlignCenter      key.Binding
	AlignRight       key.Binding
	AlignJustify     key.Binding
	Link             key.Binding
	Image            key.Binding
	Table            key.Binding
	LineSpacing      key.Binding
	ParagraphSpacing key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:             key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Save:             key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Copy:             key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy html")),
		Help:             key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		HeaderFooter:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "header/footer")),
		Watermark:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watermark")),
		Margins:          key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "margins")),
		Rulers:           key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rulers")),
		CharacterCount:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "char count")),
		PageSize:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "page size")),
		ZoomIn:           key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:          key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		PageBreak:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "page break")),
		NextPage:         key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:         key.NewBinding(key.WithKeys("N", "pgup"), key.WithHelp("N", "prev page")),
		GoToPage:         key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		ScrollUp:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "scroll")),
		ScrollDown:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "scroll")),
		Left:             key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "cursor")),
		Right:            key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "cursor")),
		ExtendLeft:       key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "select")),
		ExtendRight:      key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "select")),
		Bold:             key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bold")),
		Italic:           key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "italic")),
		Underline:        key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "underline")),
		Strike:           key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "strike")),
		Highlight:        key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "highlight")),
		Baseline:         key.NewBinding(key.WithKeys("~"), key.WithHelp("~", "baseline")),
		Superscript:      key.NewBinding(key.WithKeys("^"), key.WithHelp("^", "superscript")),
		Subscript:        key.NewBinding(key.WithKeys("_"), key.WithHelp("_", "subscript")),
		AlignLeft:        key.NewBinding(key.WithKeys("["), key.WithHelp("[", "align left")),
		AlignCenter:      key.NewBinding(key.WithKeys("|"), key.WithHelp("|", "center")),
		AlignRight:       key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "align right")),
		AlignJustify:     key.NewBinding(key.WithKeys("\\"), key.WithHelp("\\", "justify")),
		Link:             key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "link")),
		Image:            key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "image")),
		Table:            key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "table")),
		LineSpacing:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "line spacing")),
		ParagraphSpacing: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "paragraph spacing")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.HeaderFooter, k.Margins, k.Watermark, k.PageBreak, k.GoToPage, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.HeaderFooter, k.Watermark, k.Margins, k.Rulers, k.CharacterCount, k.PageSize, k.ZoomIn, k.ZoomOut},
		{k.PageBreak, k.NextPage, k.PrevPage, k.GoToPage, k.ScrollUp, k.ScrollDown, k.Left, k.ExtendRight},
		{k.Bold, k.Italic, k.Underline, k.Strike, k.Highlight, k.Baseline, k.Superscript, k.Subscript},
		{k.AlignLeft, k.AlignCenter, k.AlignRight, k.AlignJustify, k.Link, k.Image, k.Table, k.LineSpacing, k.ParagraphSpacing},
		{k.Copy, k.Save, k.Help, k.Quit},
	}
}
