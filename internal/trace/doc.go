// Package trace defines the core data types of a superstep trace: nodes,
// messages, the edges derived from them, and the per-step highlight states
// a renderer can show.
//
// # Identity and Lifecycle
//
// Everything in this package is a plain value. A trace is built once per
// load from a single log file and never mutated afterwards:
//   - **Node:** identified by its integer ID, unique across the trace
//   - **Message:** one communication from Src to Dst in a given Superstep
//   - **Edge:** exactly one per Message, sharing the message's Index
//
// Mutable display state (edge visibility, node highlights) is deliberately
// not part of these types. It is owned by the statestore and driven by the
// scheduler, which keeps the model safe to share between goroutines.
package trace
