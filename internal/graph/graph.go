package graph

import (
	"context"
	"fmt"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/statestore"
	"github.com/vk/supertrace/internal/trace"
	"github.com/vk/supertrace/internal/tracemodel"
)

// Manager composes a trace model and a state store.
type Manager struct {
	traceID string
	model   *tracemodel.Model
	store   statestore.Store
	palette render.Palette
}

// New creates a graph facade.
func New(traceID string, model *tracemodel.Model, store statestore.Store, palette render.Palette) *Manager {
	return &Manager{
		traceID: traceID,
		model:   model,
		store:   store,
		palette: palette,
	}
}

// TraceID implements Graph.
func (m *Manager) TraceID() string { return m.traceID }

// MaxSuperstep implements Graph.
func (m *Manager) MaxSuperstep() int { return m.model.MaxSuperstep() }

// ApplyStep implements Graph.
func (m *Manager) ApplyStep(ctx context.Context, step int) (int, error) {
	msgs := m.model.MessagesAt(step)
	batch := statestore.Batch{
		Visible:    make([]int, 0, len(msgs)),
		Highlights: make([]statestore.HighlightUpdate, 0, 2*len(msgs)),
	}
	for _, msg := range msgs {
		edge, ok := m.model.EdgeFor(msg)
		if !ok {
			return 0, fmt.Errorf("superstep %d: no edge for message %s", step, msg)
		}
		batch.Visible = append(batch.Visible, edge.Index)
		batch.Highlights = append(batch.Highlights,
			statestore.HighlightUpdate{NodeID: msg.Src, Highlight: trace.HighlightSource},
			statestore.HighlightUpdate{NodeID: msg.Dst, Highlight: trace.HighlightTarget},
		)
	}

	if err := m.store.Apply(ctx, batch); err != nil {
		return 0, fmt.Errorf("superstep %d: %w", step, err)
	}
	ctxlog.FromContext(ctx).Debug("Superstep applied.", "step", step, "messages", len(msgs))
	return len(msgs), nil
}

// Reset implements Graph.
func (m *Manager) Reset(ctx context.Context) error {
	return m.store.Reset(ctx)
}

// Snapshot implements Graph.
func (m *Manager) Snapshot(ctx context.Context) render.Snapshot {
	st := m.store.State(ctx)

	nodes := m.model.Nodes()
	views := make([]render.NodeView, len(nodes))
	for i, n := range nodes {
		h := st.Highlights[n.ID]
		views[i] = render.NodeView{
			ID:              n.ID,
			InitiallyActive: n.InitiallyActive,
			Highlight:       h,
			Color:           m.palette.ColorFor(n, h),
			Degree:          m.model.Degree(n.ID),
		}
	}

	edges := m.model.Edges()
	edgeViews := make([]render.EdgeView, len(edges))
	for i, e := range edges {
		edgeViews[i] = render.EdgeView{
			Index:        e.Index,
			Source:       e.Source,
			Target:       e.Target,
			Visible:      e.Index < len(st.Visible) && st.Visible[e.Index],
			Multiplicity: m.model.Multiplicity(e.Index),
		}
	}

	return render.Snapshot{
		TraceID:      m.traceID,
		MaxSuperstep: m.model.MaxSuperstep(),
		Nodes:        views,
		Edges:        edgeViews,
	}
}
