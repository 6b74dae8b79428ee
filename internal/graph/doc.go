// Package graph provides a unified facade over a loaded trace, combining the
// immutable trace model with its mutable display state.
//
// # Why Graph Package Exists
//
// The scheduler should not coordinate two stores itself. Graph gives it one
// small API:
//   - **ApplyStep:** reveal and highlight everything of one superstep, atomically
//   - **Reset:** return to the pristine display state
//   - **Snapshot:** the full state for renderers, colored with a Palette
//
// # Architecture: The Facade Pattern
//
//	┌─────────────────────────────────────┐
//	│            Graph Facade             │
//	│   (ApplyStep / Reset / Snapshot)    │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │ tracemodel │  │ statestore │
//	  │  (What is  │  │ (What is   │
//	  │ in a trace)│  │  shown)    │
//	  └────────────┘  └────────────┘
//
// # Thread-Safety
//
// All methods are safe for concurrent use; the model is immutable and the
// state store is thread-safe.
package graph
