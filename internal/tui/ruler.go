package tui

import (
	"math"
	"strings"

	"github.com/eykd/pagemark-go/internal/ruler"
)

// ColumnsPerInch is the horizontal resolution of the terminal page at 100%
// zoom. Zooming scales the number of columns a page spans.
const ColumnsPerInch = 8

// ColumnPixels is the ruler distance one terminal cell covers.
const ColumnPixels = float64(ruler.BaseDPI) / ColumnsPerInch

// pageColumns is the number of cells a page of widthInches spans.
func pageColumns(widthInches, zoom float64) int {
	return int(math.Round(widthInches*ruler.BaseDPI*zoom/ColumnPixels)) + 1
}

var tickWeight = map[ruler.TickType]int{
	ruler.Major:    4,
	ruler.Medium:   3,
	ruler.Minor:    2,
	ruler.Smallest: 1,
}

var tickGlyph = map[ruler.TickType]string{
	ruler.Major:    "┃",
	ruler.Medium:   "│",
	ruler.Minor:    "╷",
	ruler.Smallest: "·",
}

// RenderRuler draws the horizontal ruler of r as three lines: margin
// markers, ticks and inch labels. Each cell shows the heaviest tick that
// falls into it; ticks between the margins are highlighted.
func RenderRuler(r ruler.Rulers) string {
	if len(r.Horizontal) == 0 {
		return ""
	}
	last := r.Horizontal[len(r.Horizontal)-1].Position
	cols := int(math.Round(last/ColumnPixels)) + 1

	cells := make([]*ruler.Tick, cols)
	for i := range r.Horizontal {
		t := &r.Horizontal[i]
		c := int(math.Round(t.Position / ColumnPixels))
		if c >= cols {
			continue
		}
		if cells[c] == nil || tickWeight[t.Type] > tickWeight[cells[c].Type] {
			cells[c] = t
		}
	}

	ticks := make([]string, cols)
	labels := []rune(strings.Repeat(" ", cols))
	for c, t := range cells {
		if t == nil {
			ticks[c] = " "
			continue
		}
		style := tickInactive
		if t.Active {
			style = tickActive
		}
		ticks[c] = style.Render(tickGlyph[t.Type])
		for j, ch := range t.Label {
			if c+j < cols && labels[c+j] == ' ' {
				labels[c+j] = ch
			}
		}
	}

	markers := make([]string, cols)
	for i := range markers {
		markers[i] = " "
	}
	for _, m := range []float64{r.Markers.Left, r.Markers.Right} {
		if c := int(math.Round(m / ColumnPixels)); c >= 0 && c < cols {
			markers[c] = markerStyle.Render("▼")
		}
	}

	return strings.Join([]string{
		strings.Join(markers, ""),
		strings.Join(ticks, ""),
		tickInactive.Render(string(labels)),
	}, "\n")
}
