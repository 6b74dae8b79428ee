package tracemodel

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/supertrace/internal/builder"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/trace"
)

// Model is the immutable representation of one trace.
type Model struct {
	nodes    []trace.Node // sorted by ID
	nodeIdx  map[int]int  // node ID -> position in nodes
	messages []trace.Message
	edges    []trace.Edge

	bySteps      map[int][]trace.Message
	maxSuperstep int

	multiplicity []int       // per edge index
	degree       map[int]int // per node ID
}

// New builds a model from the initially active node IDs and the messages of
// a trace. Message indices must be dense and in order, which is what the
// logparser produces.
func New(ctx context.Context, initiallyActive []int, messages []trace.Message) (*Model, error) {
	for i, m := range messages {
		if m.Index != i {
			return nil, fmt.Errorf("message %s: index out of order, expected %d", m, i)
		}
		if m.Superstep < 0 {
			return nil, fmt.Errorf("message %s: negative superstep", m)
		}
	}

	g := builder.Build(ctx, messages)

	m := &Model{
		nodeIdx:      make(map[int]int),
		messages:     slices.Clone(messages),
		edges:        g.Edges,
		bySteps:      make(map[int][]trace.Message),
		maxSuperstep: -1,
		multiplicity: make([]int, len(g.Edges)),
		degree:       make(map[int]int),
	}

	active := make(map[int]bool, len(initiallyActive))
	for _, id := range initiallyActive {
		active[id] = true
	}
	ids := append(slices.Clone(g.Nodes), initiallyActive...)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	m.nodes = make([]trace.Node, len(ids))
	for i, id := range ids {
		m.nodes[i] = trace.Node{ID: id, InitiallyActive: active[id]}
		m.nodeIdx[id] = i
	}

	for _, msg := range m.messages {
		m.bySteps[msg.Superstep] = append(m.bySteps[msg.Superstep], msg)
		if msg.Superstep > m.maxSuperstep {
			m.maxSuperstep = msg.Superstep
		}
	}

	type pair struct{ src, dst int }
	pairs := make(map[pair]int)
	for _, e := range m.edges {
		pairs[pair{e.Source, e.Target}]++
		m.degree[e.Source]++
		if e.Target != e.Source {
			m.degree[e.Target]++
		}
	}
	for i, e := range m.edges {
		m.multiplicity[i] = pairs[pair{e.Source, e.Target}]
	}

	ctxlog.FromContext(ctx).Debug("Trace model constructed.",
		"nodes", len(m.nodes),
		"edges", len(m.edges),
		"max_superstep", m.maxSuperstep,
	)
	return m, nil
}

// Empty reports whether the trace has no messages.
func (m *Model) Empty() bool {
	return len(m.messages) == 0
}

// MaxSuperstep returns the highest superstep, or -1 for an empty trace.
func (m *Model) MaxSuperstep() int {
	return m.maxSuperstep
}

// MessagesAt returns the messages of one superstep in log order. Steps out
// of range yield an empty slice.
func (m *Model) MessagesAt(step int) []trace.Message {
	if step < 0 || step > m.maxSuperstep {
		return []trace.Message{}
	}
	msgs := m.bySteps[step]
	if msgs == nil {
		return []trace.Message{}
	}
	return slices.Clone(msgs)
}

// Messages returns all messages in log order.
func (m *Model) Messages() []trace.Message {
	return slices.Clone(m.messages)
}

// Nodes returns all nodes ordered by ID. The set is the message endpoints
// plus every initially active node, so it can hold nodes that no message
// touches.
func (m *Model) Nodes() []trace.Node {
	return slices.Clone(m.nodes)
}

// Edges returns all edges in message order.
func (m *Model) Edges() []trace.Edge {
	return slices.Clone(m.edges)
}

// NodeIDs returns the node IDs in ascending order.
func (m *Model) NodeIDs() []int {
	ids := make([]int, len(m.nodes))
	for i, n := range m.nodes {
		ids[i] = n.ID
	}
	return ids
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// NodeByID looks up a node.
func (m *Model) NodeByID(id int) (trace.Node, bool) {
	i, ok := m.nodeIdx[id]
	if !ok {
		return trace.Node{}, false
	}
	return m.nodes[i], true
}

// EdgeBetween returns the first edge from src to dst in message order.
// With parallel edges this is only a representative; use EdgeFor to get
// the edge of a specific message.
func (m *Model) EdgeBetween(src, dst int) (trace.Edge, bool) {
	for _, e := range m.edges {
		if e.Source == src && e.Target == dst {
			return e, true
		}
	}
	return trace.Edge{}, false
}

// EdgeFor returns the edge created for msg.
func (m *Model) EdgeFor(msg trace.Message) (trace.Edge, bool) {
	if msg.Index < 0 || msg.Index >= len(m.edges) {
		return trace.Edge{}, false
	}
	e := m.edges[msg.Index]
	if e.Source != msg.Src || e.Target != msg.Dst {
		return trace.Edge{}, false
	}
	return e, true
}

// Multiplicity returns how many edges share the (source, target) pair of
// the edge at index, itself included. Unknown indices yield 0.
func (m *Model) Multiplicity(index int) int {
	if index < 0 || index >= len(m.multiplicity) {
		return 0
	}
	return m.multiplicity[index]
}

// ParallelCount returns how many OTHER edges share the pair of the edge at
// index.
func (m *Model) ParallelCount(index int) int {
	if n := m.Multiplicity(index); n > 0 {
		return n - 1
	}
	return 0
}

// Degree returns the number of edges incident to a node. A self-loop
// counts once.
func (m *Model) Degree(id int) int {
	return m.degree[id]
}
