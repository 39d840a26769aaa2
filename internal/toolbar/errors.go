package toolbar

import "errors"

var (
	// ErrInvalidZoom is returned by SetZoom for values outside page.ZoomOptions.
	ErrInvalidZoom = errors.New("zoom is not one of the selectable values")

	// ErrUnknownPageSize is returned by SetPageSize for an unregistered size.
	ErrUnknownPageSize = errors.New("unknown page size")

	// ErrNoEnclosingPage is returned by InsertPageBreak when the selection is
	// not inside a page.
	ErrNoEnclosingPage = errors.New("no page encloses the selection")

	// ErrNoEnclosingBlock is returned by block inserts when the selection is
	// not inside a paragraph or heading.
	ErrNoEnclosingBlock = errors.New("no text block encloses the selection")

	// ErrInvalidAlignment is returned by SetTextAlign for unknown alignments.
	ErrInvalidAlignment = errors.New("unknown text alignment")

	// ErrInvalidInput is returned when a dialog answer cannot be used.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownDialog is returned for dialog kinds the toolbar does not offer.
	ErrUnknownDialog = errors.New("unknown dialog")
)
