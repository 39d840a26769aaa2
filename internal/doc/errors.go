package doc

import "errors"

// Position errors
var (
	// ErrInvalidPosition indicates a position outside the document or inside a leaf.
	ErrInvalidPosition = errors.New("position out of bounds")

	// ErrInvalidRange indicates a range whose ends do not share a parent.
	ErrInvalidRange = errors.New("range does not cover sibling nodes")

	// ErrNoNodeAtPosition indicates that no node starts at the given position.
	ErrNoNodeAtPosition = errors.New("no node at position")
)

// Schema errors
var (
	// ErrUnknownType indicates a node or mark type the schema does not define.
	ErrUnknownType = errors.New("unknown node type")

	// ErrContentViolation indicates a child that its parent's content expression forbids,
	// or a required-content container left empty.
	ErrContentViolation = errors.New("content not allowed here")
)

// Transaction errors
var (
	// ErrConflict indicates that the document changed between Begin and Commit.
	ErrConflict = errors.New("document changed since transaction began")

	// ErrClosed indicates that the transaction was already committed or discarded.
	ErrClosed = errors.New("transaction already closed")
)
