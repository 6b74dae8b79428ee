// Package tracemodel holds the authoritative, immutable in-memory model of a
// loaded trace.
//
// # Why TraceModel Exists
//
// The model is the single source of truth for WHAT a trace contains:
//   - **Nodes:** every node referenced by a message, plus initially active ones
//   - **Edges:** one per message, parallel edges preserved
//   - **Schedule:** messages grouped by superstep, in log order
//
// It deliberately knows nothing about WHEN things are shown. Visibility and
// highlights are display state, owned by the statestore and driven by the
// scheduler. This split mirrors a topology store next to a state store: the
// model is written once during load and read many times during playback.
//
// # Lifecycle
//
//  1. **Created** fresh for every load (never shared across loads)
//  2. **Read** by the graph facade while the scheduler steps through it
//  3. **Discarded** when the next trace is loaded
//
// # Thread-Safety
//
// A Model is immutable after New returns; all methods are safe for
// concurrent use without locking. Slices returned by accessors are copies.
package tracemodel
