// Package ruler computes the tick marks and margin markers of the page
// rulers and turns marker drags into margin changes.
package ruler

import (
	"math"
	"strconv"

	"github.com/eykd/pagemark-go/internal/page"
)

// BaseDPI is the number of pixels per inch at 100% zoom.
const BaseDPI = 96

// TicksPerInch is the finest ruler subdivision.
const TicksPerInch = 16

// Direction is the axis a ruler measures.
type Direction string

// Ruler directions.
const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// TickType is the visual weight of a tick.
type TickType string

// Tick weights, heaviest first.
const (
	Major    TickType = "major"
	Medium   TickType = "medium"
	Minor    TickType = "minor"
	Smallest TickType = "smallest"
)

// Tick is one ruler graduation.
type Tick struct {
	ID       string   `json:"id"`
	Position float64  `json:"position"`
	Type     TickType `json:"type"`
	Label    string   `json:"label,omitempty"`
	Active   bool     `json:"active"`
}

// Layout is the page geometry the rulers describe. Zoom is a factor (1 is
// 100%).
type Layout struct {
	Width   float64
	Height  float64
	Zoom    float64
	Margins page.Margins
}

// NewLayout builds a layout from a paper size and a zoom percentage.
func NewLayout(size page.Size, zoomPercent int, margins page.Margins) Layout {
	return Layout{Width: size.Width, Height: size.Height, Zoom: float64(zoomPercent) / 100, Margins: margins}
}

// PixelsPerInch returns the effective DPI at the layout's zoom.
func (l Layout) PixelsPerInch() float64 { return BaseDPI * l.Zoom }

// Markers are the margin marker positions in pixels from the ruler origin.
type Markers struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Get returns the marker of one edge.
func (m Markers) Get(e page.Edge) float64 {
	switch e {
	case page.Left:
		return m.Left
	case page.Right:
		return m.Right
	case page.Top:
		return m.Top
	case page.Bottom:
		return m.Bottom
	}
	return 0
}

// Rulers holds both axes of a page.
type Rulers struct {
	Horizontal []Tick  `json:"horizontal"`
	Vertical   []Tick  `json:"vertical"`
	Markers    Markers `json:"markers"`
}

// GenerateTicks lays out the ticks of one axis every 1/16in. A tick is
// active when it falls between the two margins.
func GenerateTicks(sizeInches float64, dir Direction, zoom, startMargin, endMargin float64) []Tick {
	dpi := BaseDPI * zoom
	step := dpi / TicksPerInch
	sizePx := sizeInches * dpi
	startPx := startMargin * dpi
	endPx := sizePx - endMargin*dpi

	prefix := "h-tick-"
	if dir == Vertical {
		prefix = "v-tick-"
	}
	n := int(math.Floor(sizeInches*TicksPerInch + 1e-9))
	ticks := make([]Tick, 0, n+1)
	for k := 0; k <= n; k++ {
		pos := float64(k) * step
		t := Tick{
			ID:       prefix + strconv.FormatFloat(pos, 'f', -1, 64),
			Position: pos,
			Type:     classify(k),
			Active:   startPx <= pos && pos <= endPx,
		}
		if t.Type == Major {
			t.Label = strconv.Itoa(k / TicksPerInch)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

func classify(sixteenths int) TickType {
	switch {
	case sixteenths%16 == 0:
		return Major
	case sixteenths%8 == 0:
		return Medium
	case sixteenths%4 == 0:
		return Minor
	}
	return Smallest
}

// Compute returns both rulers and the marker positions for l.
func Compute(l Layout) Rulers {
	dpi := l.PixelsPerInch()
	m := l.Margins
	return Rulers{
		Horizontal: GenerateTicks(l.Width, Horizontal, l.Zoom, m.Left, m.Right),
		Vertical:   GenerateTicks(l.Height, Vertical, l.Zoom, m.Top, m.Bottom),
		Markers: Markers{
			Left:   m.Left * dpi,
			Right:  (l.Width - m.Right) * dpi,
			Top:    m.Top * dpi,
			Bottom: (l.Height - m.Bottom) * dpi,
		},
	}
}

// HitMarker returns the marker on dir's axis within tolerance pixels of px,
// preferring the nearer one.
func (r Rulers) HitMarker(dir Direction, px, tolerance float64) (page.Edge, bool) {
	a, b := page.Left, page.Right
	if dir == Vertical {
		a, b = page.Top, page.Bottom
	}
	da := math.Abs(r.Markers.Get(a) - px)
	db := math.Abs(r.Markers.Get(b) - px)
	switch {
	case da <= tolerance && da <= db:
		return a, true
	case db <= tolerance:
		return b, true
	}
	return "", false
}
