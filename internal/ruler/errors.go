package ruler

import "errors"

var (
	// ErrDragInProgress is returned by Begin while another gesture is active.
	ErrDragInProgress = errors.New("a marker drag is already in progress")

	// ErrStaleGesture is returned for a token that is not the active gesture.
	ErrStaleGesture = errors.New("gesture is no longer active")
)
