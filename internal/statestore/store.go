// Package statestore defines the interface for the mutable display state of
// a trace: which edges are visible and how each node is highlighted.
//
// # Why State Store Exists
//
// The state store isolates **mutable display state** from the **immutable
// trace model** (tracemodel.Model). The model says what a trace contains;
// the store says what is currently shown.
//
// This separation provides several benefits:
//   - **Clarity:** Model queries never mix with playback mutations
//   - **Atomicity:** A whole superstep is committed as one Batch or not at all
//   - **Testability:** Display state can be asserted without a scheduler
//   - **Replayability:** Reset returns to the pristine state without reloading
//
// # Lifecycle and Usage
//
//  1. **Created** per load, sized to the model's edges and nodes
//  2. **Mutated** by the graph facade, one Batch per scheduler advance
//  3. **Reset** on restart
//  4. **Discarded** with the model when the next trace is loaded
//
// # State Transitions
//
// Edge visibility only moves false → true between resets. Highlights are
// last-writer-wins: a later batch overwrites an earlier one for the same node.
package statestore

import (
	"context"
	"errors"

	"github.com/vk/supertrace/internal/trace"
)

// ErrUnknownElement is returned when a batch references an edge index or
// node ID the store was not created with. Nothing from that batch is applied.
var ErrUnknownElement = errors.New("unknown trace element")

// HighlightUpdate sets the highlight of one node.
type HighlightUpdate struct {
	NodeID    int
	Highlight trace.Highlight
}

// Batch is the complete set of changes of one scheduler advance.
type Batch struct {
	// Visible lists edge indices to reveal.
	Visible []int
	// Highlights are applied in order; the last update for a node wins.
	Highlights []HighlightUpdate
}

// State is a point-in-time copy of the whole display state.
type State struct {
	// Visible is indexed by edge index.
	Visible []bool
	// Highlights holds only nodes whose highlight is not HighlightNone.
	Highlights map[int]trace.Highlight
}

// VisibleCount returns the number of visible edges.
func (s State) VisibleCount() int {
	n := 0
	for _, v := range s.Visible {
		if v {
			n++
		}
	}
	return n
}

// Store manages the display state of one loaded trace.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: timer-driven advances
// write while renderers and control requests read.
//
// # Typical Implementation
//
// See internal/inmemorystore for the reference implementation.
type Store interface {
	// Apply commits a batch atomically. If any element of the batch is
	// unknown, it returns an error wrapping ErrUnknownElement and changes
	// nothing.
	Apply(ctx context.Context, b Batch) error

	// EdgeVisible reports whether the edge at index is visible.
	EdgeVisible(ctx context.Context, index int) bool

	// Highlight returns the current highlight of a node.
	Highlight(ctx context.Context, nodeID int) trace.Highlight

	// State returns a consistent copy of the whole display state.
	State(ctx context.Context) State

	// Reset hides every edge and clears every highlight.
	Reset(ctx context.Context) error
}
