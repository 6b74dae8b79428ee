package render

import (
	"github.com/vk/supertrace/internal/trace"
)

// Reason tells a renderer why a snapshot was published.
type Reason string

const (
	ReasonLoad    Reason = "load"
	ReasonAdvance Reason = "advance"
	ReasonReset   Reason = "reset"
)

// NodeView is the display state of one node.
type NodeView struct {
	ID              int             `json:"id"`
	InitiallyActive bool            `json:"initially_active"`
	Highlight       trace.Highlight `json:"highlight"`
	Color           string          `json:"color"`
	// Degree is the number of incident edges, useful for sizing.
	Degree int `json:"degree"`
}

// EdgeView is the display state of one edge.
type EdgeView struct {
	Index   int  `json:"index"`
	Source  int  `json:"source"`
	Target  int  `json:"target"`
	Visible bool `json:"visible"`
	// Multiplicity counts edges sharing this edge's endpoints, itself included.
	Multiplicity int `json:"multiplicity"`
}

// Snapshot is the full display state at one moment.
type Snapshot struct {
	TraceID      string     `json:"trace_id"`
	Reason       Reason     `json:"reason"`
	State        string     `json:"state"`
	Step         int        `json:"step"`
	MaxSuperstep int        `json:"max_superstep"`
	Nodes        []NodeView `json:"nodes"`
	Edges        []EdgeView `json:"edges"`
}

// VisibleEdges returns the number of visible edges.
func (s Snapshot) VisibleEdges() int {
	n := 0
	for _, e := range s.Edges {
		if e.Visible {
			n++
		}
	}
	return n
}

// Node returns the view of a node by ID.
func (s Snapshot) Node(id int) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}
