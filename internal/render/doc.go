// Package render defines the boundary between the trace engine and whatever
// draws it.
//
// The engine never touches pixels. After every change it hands a Snapshot,
// the complete visibility and highlight state of all nodes and edges, to a
// Renderer. Layout, animation and input handling are entirely the
// renderer's business; a renderer that animates should transition over the
// scheduler's step delay rather than snapping.
package render
