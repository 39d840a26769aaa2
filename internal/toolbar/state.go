// Package toolbar drives page-level and text-level editing actions. The
// controller owns the page configuration and mirrors it into the document
// it is handed on every call.
package toolbar

import (
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
)

// State is the page configuration shown by the toolbar.
type State struct {
	PageSize              page.SizeID  `json:"pageSize"`
	Zoom                  int          `json:"zoom"`
	Margins               page.Margins `json:"margins"`
	HeaderFooterVisible   bool         `json:"headerFooterVisible"`
	MarginsVisible        bool         `json:"marginsVisible"`
	RulersVisible         bool         `json:"rulersVisible"`
	CharacterCountVisible bool         `json:"characterCountVisible"`
	WatermarkEnabled      bool         `json:"watermarkEnabled"`
	WatermarkText         string       `json:"watermarkText"`
}

// DefaultState returns the configuration of a fresh editor.
func DefaultState() State {
	return State{
		PageSize:              page.A4,
		Zoom:                  page.DefaultZoom,
		Margins:               page.Uniform(1),
		HeaderFooterVisible:   true,
		MarginsVisible:        true,
		CharacterCountVisible: true,
		WatermarkText:         extension.DefaultWatermarkText,
	}
}

// Size returns the paper size of the state, falling back to A4.
func (s State) Size() page.Size {
	if sz, ok := page.Lookup(s.PageSize); ok {
		return sz
	}
	sz, _ := page.Lookup(page.A4)
	return sz
}

// defaultMargins is the padding the margin toggle applies.
func (s State) defaultMargins() page.Margins {
	if s.MarginsVisible {
		return page.Uniform(s.Size().Padding)
	}
	return page.Uniform(page.MinimalMargin)
}

func (s State) watermarkText() string {
	if s.WatermarkText == "" {
		return extension.DefaultWatermarkText
	}
	return s.WatermarkText
}
