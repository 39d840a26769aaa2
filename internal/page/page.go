// Package page holds the physical page vocabulary shared by the toolbar,
// ruler and extensions: standard sizes, margins, edges and zoom levels.
// All lengths are in inches.
package page

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SizeID names one of the supported paper sizes.
type SizeID string

// Supported paper sizes.
const (
	A4     SizeID = "A4"
	Letter SizeID = "Letter"
	Legal  SizeID = "Legal"
)

// Size is a paper size with its default padding.
type Size struct {
	ID      SizeID
	Label   string
	Width   float64
	Height  float64
	Padding float64
}

// Sizes lists the supported paper sizes in selector order.
var Sizes = []Size{
	{ID: A4, Label: "A4 (8.27 x 11.69 in)", Width: 8.27, Height: 11.69, Padding: 1},
	{ID: Letter, Label: "Letter (8.5 x 11 in)", Width: 8.5, Height: 11, Padding: 1},
	{ID: Legal, Label: "Legal (8.5 x 14 in)", Width: 8.5, Height: 14, Padding: 1},
}

// BreakHeight is the fixed visual gap rendered after every page.
const BreakHeight = 0.167

// MinimalMargin is the padding applied to every edge while margins are hidden.
const MinimalMargin = 0.1

// ZoomOptions are the selectable zoom percentages.
var ZoomOptions = []int{50, 75, 90, 100, 125, 150, 200}

// DefaultZoom is the zoom percentage used when nothing else is configured.
const DefaultZoom = 100

// Lookup returns the size registered under id.
func Lookup(id SizeID) (Size, bool) {
	for _, s := range Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

// Match returns the size whose dimensions equal width x height (to 1/100in).
func Match(width, height float64) (Size, bool) {
	for _, s := range Sizes {
		if nearlyEqual(s.Width, width) && nearlyEqual(s.Height, height) {
			return s, true
		}
	}
	return Size{}, false
}

// ValidZoom reports whether zoom is one of ZoomOptions.
func ValidZoom(zoom int) bool {
	for _, z := range ZoomOptions {
		if z == zoom {
			return true
		}
	}
	return false
}

// Edge identifies one page edge.
type Edge string

// Page edges.
const (
	Top    Edge = "top"
	Right  Edge = "right"
	Bottom Edge = "bottom"
	Left   Edge = "left"
)

// Edges lists all four edges in CSS shorthand order.
var Edges = []Edge{Top, Right, Bottom, Left}

// ParseEdge parses an edge name (case-insensitive).
func ParseEdge(s string) (Edge, error) {
	e := Edge(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case Top, Right, Bottom, Left:
		return e, nil
	}
	return "", fmt.Errorf("unknown edge %q (want top, right, bottom or left)", s)
}

// Vertical reports whether the edge is measured along the page height.
func (e Edge) Vertical() bool {
	return e == Top || e == Bottom
}

// Margins holds the padding of the four page edges.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns margins with v on every edge.
func Uniform(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

// Get returns the margin of one edge.
func (m Margins) Get(e Edge) float64 {
	switch e {
	case Top:
		return m.Top
	case Right:
		return m.Right
	case Bottom:
		return m.Bottom
	case Left:
		return m.Left
	}
	return 0
}

// With returns a copy of m with edge e set to v.
func (m Margins) With(e Edge, v float64) Margins {
	switch e {
	case Top:
		m.Top = v
	case Right:
		m.Right = v
	case Bottom:
		m.Bottom = v
	case Left:
		m.Left = v
	}
	return m
}

// Dimension returns the page dimension an edge's margin is bounded by.
func Dimension(e Edge, width, height float64) float64 {
	if e.Vertical() {
		return height
	}
	return width
}

// Clamp bounds v to [0, max]. NaN clamps to 0.
func Clamp(v, max float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// FormatInches renders v as a CSS length such as "8.27in".
func FormatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}

// ParseInches parses "1in", "1.5" or " 0.25in " into inches.
func ParseInches(s string) (float64, error) {
	v := strings.TrimSuffix(strings.TrimSpace(s), "in")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid length %q: not a finite number", s)
	}
	return f, nil
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 0.005 && d > -0.005
}
