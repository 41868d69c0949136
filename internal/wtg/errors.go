// Package wtg holds the Window Transition Graph: windows, the transitions
// between them, and the stack simulation used to decide whether a sequence of
// transitions can actually happen at runtime.
//
// A Graph is built by a single writer (the pipeline) and then frozen.
// After Freeze it is read-only and may be shared by concurrent queries; every
// query owns its own WindowStack.
package wtg

import "errors"

var (
	// ErrInvalidEdge is returned when an edge would violate a construction
	// invariant: nil endpoints, no handlers, or handlers that disagree on
	// (window, widget, event).
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrUnknownWindow is returned when a node is requested for a window that
	// was never added.
	ErrUnknownWindow = errors.New("window has no node")

	// ErrFrozen is returned by mutations on a frozen graph.
	ErrFrozen = errors.New("graph is frozen")

	// ErrNotActivity is returned when a component is requested for a node
	// that is not an activity.
	ErrNotActivity = errors.New("node is not an activity")
)
