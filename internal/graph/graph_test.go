package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/inmemorystore"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/statestore"
	"github.com/vk/supertrace/internal/trace"
	"github.com/vk/supertrace/internal/tracemodel"
)

func newManager(t *testing.T, active []int, triples ...[3]int) *Manager {
	t.Helper()
	msgs := make([]trace.Message, len(triples))
	for i, tr := range triples {
		msgs[i] = trace.Message{Index: i, Src: tr[0], Dst: tr[1], Superstep: tr[2]}
	}
	model, err := tracemodel.New(context.Background(), active, msgs)
	require.NoError(t, err)

	store := inmemorystore.New(model.EdgeCount(), model.NodeIDs())
	return New("trace-1", model, store, render.DefaultPalette())
}

func TestApplyStep_SingleMessageHighlightsEndpoints(t *testing.T) {
	g := newManager(t, []int{1, 2}, [3]int{1, 3, 0})
	ctx := context.Background()

	n, err := g.ApplyStep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap := g.Snapshot(ctx)
	assert.Equal(t, "trace-1", snap.TraceID)
	assert.Equal(t, 0, snap.MaxSuperstep)

	n1, _ := snap.Node(1)
	n2, _ := snap.Node(2)
	n3, _ := snap.Node(3)
	assert.Equal(t, trace.HighlightSource, n1.Highlight)
	assert.Equal(t, "yellow", n1.Color)
	assert.Equal(t, trace.HighlightNone, n2.Highlight)
	assert.Equal(t, "red", n2.Color)
	assert.Equal(t, trace.HighlightTarget, n3.Highlight)
	assert.Equal(t, "orange", n3.Color)

	require.Len(t, snap.Edges, 1)
	assert.True(t, snap.Edges[0].Visible)
}

func TestApplyStep_SharedSource(t *testing.T) {
	g := newManager(t, nil, [3]int{1, 2, 0}, [3]int{1, 3, 0})
	ctx := context.Background()

	_, err := g.ApplyStep(ctx, 0)
	require.NoError(t, err)

	snap := g.Snapshot(ctx)
	for id, want := range map[int]trace.Highlight{
		1: trace.HighlightSource,
		2: trace.HighlightTarget,
		3: trace.HighlightTarget,
	} {
		n, ok := snap.Node(id)
		require.True(t, ok)
		assert.Equal(t, want, n.Highlight, "node %d", id)
	}
}

func TestApplyStep_ParallelEdgesRevealPerMessage(t *testing.T) {
	g := newManager(t, nil, [3]int{1, 2, 0}, [3]int{1, 2, 1})
	ctx := context.Background()

	_, err := g.ApplyStep(ctx, 1)
	require.NoError(t, err)

	snap := g.Snapshot(ctx)
	assert.False(t, snap.Edges[0].Visible)
	assert.True(t, snap.Edges[1].Visible)
	assert.Equal(t, 2, snap.Edges[1].Multiplicity)
}

func TestApplyStep_LaterStepsOverwriteHighlights(t *testing.T) {
	g := newManager(t, nil, [3]int{1, 2, 0}, [3]int{2, 1, 1})
	ctx := context.Background()

	_, err := g.ApplyStep(ctx, 0)
	require.NoError(t, err)
	_, err = g.ApplyStep(ctx, 1)
	require.NoError(t, err)

	snap := g.Snapshot(ctx)
	n1, _ := snap.Node(1)
	n2, _ := snap.Node(2)
	assert.Equal(t, trace.HighlightTarget, n1.Highlight)
	assert.Equal(t, trace.HighlightSource, n2.Highlight)
	assert.Equal(t, 2, snap.VisibleEdges())
}

func TestApplyStep_EmptyAndOutOfRange(t *testing.T) {
	g := newManager(t, nil, [3]int{1, 2, 2})
	ctx := context.Background()

	n, err := g.ApplyStep(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = g.ApplyStep(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, g.Snapshot(ctx).VisibleEdges())
}

func TestApplyStep_FailureLeavesStateUntouched(t *testing.T) {
	model, err := tracemodel.New(context.Background(), nil, []trace.Message{
		{Index: 0, Src: 1, Dst: 2, Superstep: 0},
	})
	require.NoError(t, err)
	// A store that does not know node 2 rejects the batch.
	store := inmemorystore.New(model.EdgeCount(), []int{1})
	g := New("t", model, store, render.DefaultPalette())
	ctx := context.Background()

	_, err = g.ApplyStep(ctx, 0)
	require.ErrorIs(t, err, statestore.ErrUnknownElement)
	assert.False(t, store.EdgeVisible(ctx, 0))
	assert.Equal(t, trace.HighlightNone, store.Highlight(ctx, 1))
}

func TestReset(t *testing.T) {
	g := newManager(t, []int{1}, [3]int{1, 2, 0})
	ctx := context.Background()

	_, err := g.ApplyStep(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, g.Reset(ctx))

	snap := g.Snapshot(ctx)
	assert.Zero(t, snap.VisibleEdges())
	n1, _ := snap.Node(1)
	assert.Equal(t, "red", n1.Color)
	n2, _ := snap.Node(2)
	assert.Equal(t, "blue", n2.Color)
}
