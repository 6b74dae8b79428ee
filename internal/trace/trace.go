package trace

import (
	"errors"
	"fmt"
)

// ErrEmptyTrace indicates that a trace contains no messages. It is not
// fatal: an empty trace loads fine and playback finishes immediately.
var ErrEmptyTrace = errors.New("trace contains no messages")

// Node is a vertex of the traced computation.
type Node struct {
	ID              int
	InitiallyActive bool
}

// Message is a single message passed from Src to Dst during Superstep.
type Message struct {
	// Index is the message's position in log order, starting at 0.
	Index     int
	Src       int
	Dst       int
	Superstep int
}

func (m Message) String() string {
	return fmt.Sprintf("#%d %d->%d@%d", m.Index, m.Src, m.Dst, m.Superstep)
}

// Edge is the directed link created for one message. Edges are not
// deduplicated: two messages between the same pair produce two parallel
// edges, and Index always equals the originating Message.Index.
type Edge struct {
	Index  int
	Source int
	Target int
}

// Highlight is the per-step emphasis of a node.
type Highlight int

const (
	// HighlightNone leaves the node in its default coloring.
	HighlightNone Highlight = iota
	// HighlightSource marks a node that sent a message in the current run.
	HighlightSource
	// HighlightTarget marks a node that received a message in the current run.
	HighlightTarget
)

func (h Highlight) String() string {
	switch h {
	case HighlightNone:
		return "none"
	case HighlightSource:
		return "source"
	case HighlightTarget:
		return "target"
	default:
		return fmt.Sprintf("highlight(%d)", int(h))
	}
}

// MarshalText lets highlights travel as readable strings in JSON payloads.
func (h Highlight) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (h *Highlight) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*h = HighlightNone
	case "source":
		*h = HighlightSource
	case "target":
		*h = HighlightTarget
	default:
		return fmt.Errorf("unknown highlight %q", string(b))
	}
	return nil
}
