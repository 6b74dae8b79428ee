package builder

import (
	"context"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/trace"
)

// Graph is the raw structure derived from a message list.
type Graph struct {
	// Nodes holds distinct node IDs in first-seen order.
	Nodes []int
	// Edges holds one edge per message, in message order.
	Edges []trace.Edge
}

// Build derives nodes and edges from messages.
func Build(ctx context.Context, messages []trace.Message) *Graph {
	g := &Graph{
		Nodes: make([]int, 0),
		Edges: make([]trace.Edge, 0, len(messages)),
	}
	seen := make(map[int]struct{})
	addNode := func(id int) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		g.Nodes = append(g.Nodes, id)
	}

	for _, m := range messages {
		addNode(m.Src)
		addNode(m.Dst)
		g.Edges = append(g.Edges, trace.Edge{
			Index:  m.Index,
			Source: m.Src,
			Target: m.Dst,
		})
	}

	ctxlog.FromContext(ctx).Debug("Graph built from messages.", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g
}
