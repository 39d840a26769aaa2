package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	diffDelLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	diffAddLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	diffDelChar = diffDelLine.Underline(true)
	diffAddChar = diffAddLine.Underline(true)
	diffSame    = lipgloss.NewStyle().Faint(true)
)

// RenderDiff renders a line diff of two serialised documents. Changed line
// pairs get character-level highlights; unchanged lines are shown faint.
func RenderDiff(before, after string) string {
	if before == after {
		return "No changes\n"
	}
	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for i := 0; i < len(diffs); i++ {
		df := diffs[i]
		switch df.Type {
		case dmp.DiffEqual:
			for _, l := range splitLines(df.Text) {
				sb.WriteString("  " + diffSame.Render(l) + "\n")
			}
		case dmp.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == dmp.DiffInsert {
				writeChanged(&sb, df.Text, diffs[i+1].Text)
				i++
				continue
			}
			for _, l := range splitLines(df.Text) {
				sb.WriteString(diffDelLine.Render("- "+l) + "\n")
			}
		case dmp.DiffInsert:
			for _, l := range splitLines(df.Text) {
				sb.WriteString(diffAddLine.Render("+ "+l) + "\n")
			}
		}
	}
	return sb.String()
}

// writeChanged renders a replaced block as a -/+ pair with the changed
// characters underlined.
func writeChanged(sb *strings.Builder, before, after string) {
	d := dmp.New()
	diffs := d.DiffMain(strings.TrimSuffix(before, "\n"), strings.TrimSuffix(after, "\n"), false)
	d.DiffCleanupSemantic(diffs)

	sb.WriteString(diffDelLine.Render("- "))
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffDelete:
			sb.WriteString(diffDelChar.Render(df.Text))
		case dmp.DiffEqual:
			sb.WriteString(diffDelLine.Render(df.Text))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(diffAddLine.Render("+ "))
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffInsert:
			sb.WriteString(diffAddChar.Render(df.Text))
		case dmp.DiffEqual:
			sb.WriteString(diffAddLine.Render(df.Text))
		}
	}
	sb.WriteString("\n")
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
