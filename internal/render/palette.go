package render

import (
	"github.com/vk/supertrace/internal/trace"
)

// Palette maps node states to colors. Values are opaque to the engine;
// browser renderers use CSS colors, the terminal renderer maps them to ANSI.
type Palette struct {
	InitiallyActive string `json:"initially_active"`
	Inactive        string `json:"inactive"`
	Source          string `json:"source"`
	Target          string `json:"target"`
}

// DefaultPalette returns the classic red/blue/yellow/orange scheme.
func DefaultPalette() Palette {
	return Palette{
		InitiallyActive: "red",
		Inactive:        "blue",
		Source:          "yellow",
		Target:          "orange",
	}
}

// ColorFor picks the color of a node: its highlight if any, otherwise its
// default-active coloring.
func (p Palette) ColorFor(n trace.Node, h trace.Highlight) string {
	switch h {
	case trace.HighlightSource:
		return p.Source
	case trace.HighlightTarget:
		return p.Target
	}
	if n.InitiallyActive {
		return p.InitiallyActive
	}
	return p.Inactive
}
