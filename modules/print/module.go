// Package print renders snapshots to the terminal with lipgloss.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/trace"
)

// Name is the registry name of this renderer.
const Name = "print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the terminal renderer.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRenderer(Name, &registry.RegisteredRenderer{
		Description: "prints each snapshot to the terminal",
		New: func(_ context.Context, deps registry.Deps) (render.Renderer, error) {
			out := deps.Out
			if out == nil {
				out = os.Stdout
			}
			return New(out), nil
		},
	})
}

// ansi maps palette color names to ANSI 256 codes. Anything else is handed
// to lipgloss as is, so hex colors work too.
var ansi = map[string]string{
	"black":   "0",
	"red":     "9",
	"green":   "10",
	"yellow":  "11",
	"blue":    "12",
	"magenta": "13",
	"cyan":    "14",
	"white":   "15",
	"orange":  "208",
	"gold":    "220",
	"gray":    "244",
	"grey":    "244",
}

// Renderer writes one block of text per snapshot.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	lr       *lipgloss.Renderer
	header   lipgloss.Style
	dim      lipgloss.Style
	styles   map[string]lipgloss.Style
	traceID  string
	revealed map[int]bool
}

// New creates a terminal renderer. Color output depends on whether out is
// a terminal.
func New(out io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(out)
	return &Renderer{
		out:      out,
		lr:       lr,
		header:   lr.NewStyle().Bold(true),
		dim:      lr.NewStyle().Foreground(lipgloss.Color("244")),
		styles:   make(map[string]lipgloss.Style),
		revealed: make(map[int]bool),
	}
}

// OnSnapshot implements render.Renderer.
func (r *Renderer) OnSnapshot(_ context.Context, s render.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.TraceID != r.traceID || s.Reason != render.ReasonAdvance {
		r.traceID = s.TraceID
		clear(r.revealed)
	}
	fmt.Fprintln(r.out, r.format(s))
	for _, e := range s.Edges {
		if e.Visible {
			r.revealed[e.Index] = true
		}
	}
}

func (r *Renderer) format(s render.Snapshot) string {
	var b strings.Builder

	title := fmt.Sprintf("%s  %s", shortID(s.TraceID), s.Reason)
	switch {
	case s.MaxSuperstep < 0:
		title += "  (no messages)"
	case s.Step < 0:
		title += fmt.Sprintf("  step -/%d", s.MaxSuperstep)
	default:
		title += fmt.Sprintf("  step %d/%d", s.Step, s.MaxSuperstep)
	}
	title += fmt.Sprintf("  [%s]", s.State)
	b.WriteString(r.header.Render(title))
	b.WriteString(r.dim.Render(fmt.Sprintf("  edges %d/%d", s.VisibleEdges(), len(s.Edges))))
	b.WriteByte('\n')

	nodes := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		glyph := "○"
		switch n.Highlight {
		case trace.HighlightSource:
			glyph = "▲"
		case trace.HighlightTarget:
			glyph = "▼"
		default:
			if n.InitiallyActive {
				glyph = "●"
			}
		}
		nodes = append(nodes, r.style(n.Color).Render(fmt.Sprintf("%s%d", glyph, n.ID)))
	}
	b.WriteString("  nodes: ")
	b.WriteString(strings.Join(nodes, " "))

	var fresh []render.EdgeView
	for _, e := range s.Edges {
		if e.Visible && !r.revealed[e.Index] {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) > 0 {
		sort.Slice(fresh, func(i, j int) bool { return fresh[i].Index < fresh[j].Index })
		parts := make([]string, len(fresh))
		for i, e := range fresh {
			parts[i] = fmt.Sprintf("%d→%d", e.Source, e.Target)
			if e.Multiplicity > 1 {
				parts[i] += fmt.Sprintf("(×%d)", e.Multiplicity)
			}
		}
		b.WriteString("\n  new:   ")
		b.WriteString(strings.Join(parts, "  "))
	}
	return b.String()
}

func (r *Renderer) style(color string) lipgloss.Style {
	if st, ok := r.styles[color]; ok {
		return st
	}
	code, ok := ansi[strings.ToLower(color)]
	if !ok {
		code = color
	}
	st := r.lr.NewStyle().Foreground(lipgloss.Color(code))
	r.styles[color] = st
	return st
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "--------"
	}
	return id
}
