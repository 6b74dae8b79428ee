// Package builder derives the graph structure of a trace from its messages.
//
// The node set is the deduplicated union of all message endpoints. The edge
// list is NOT deduplicated: every message contributes one edge, in message
// order, so that repeated communication between the same pair shows up as
// parallel edges (and, for renderers, as a heavier line).
package builder
