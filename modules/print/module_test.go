package print

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/testutil"
	"github.com/vk/supertrace/internal/trace"
)

func snapshot(step int, reason render.Reason, visible ...bool) render.Snapshot {
	s := render.Snapshot{
		TraceID:      "0123456789abcdef",
		Reason:       reason,
		State:        "running",
		Step:         step,
		MaxSuperstep: 1,
		Nodes: []render.NodeView{
			{ID: 1, InitiallyActive: true, Color: "red"},
			{ID: 2, Highlight: trace.HighlightSource, Color: "yellow"},
			{ID: 3, Highlight: trace.HighlightTarget, Color: "orange"},
		},
		Edges: []render.EdgeView{
			{Index: 0, Source: 1, Target: 2, Multiplicity: 1},
			{Index: 1, Source: 2, Target: 3, Multiplicity: 2},
			{Index: 2, Source: 2, Target: 3, Multiplicity: 2},
		},
	}
	for i, v := range visible {
		s.Edges[i].Visible = v
	}
	return s
}

func TestRenderer_Output(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	r := New(buf)
	ctx := context.Background()

	r.OnSnapshot(ctx, snapshot(-1, render.ReasonLoad))
	r.OnSnapshot(ctx, snapshot(0, render.ReasonAdvance, true))
	r.OnSnapshot(ctx, snapshot(1, render.ReasonAdvance, true, true, true))

	out := buf.String()
	blocks := strings.Split(strings.TrimSpace(out), "01234567  ")
	require.Len(t, blocks, 4)

	assert.Contains(t, blocks[1], "load  step -/1  [running]")
	assert.Contains(t, blocks[1], "edges 0/3")
	assert.Contains(t, blocks[1], "●1")
	assert.Contains(t, blocks[1], "▲2")
	assert.Contains(t, blocks[1], "▼3")
	assert.NotContains(t, blocks[1], "new:")

	assert.Contains(t, blocks[2], "step 0/1")
	assert.Contains(t, blocks[2], "new:   1→2")

	assert.Contains(t, blocks[3], "edges 3/3")
	assert.Contains(t, blocks[3], "2→3(×2)  2→3(×2)")
	assert.NotContains(t, blocks[3], "1→2", "edges shown earlier are not repeated")
}

func TestRenderer_ResetForgetsRevealedEdges(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	r := New(buf)
	ctx := context.Background()

	r.OnSnapshot(ctx, snapshot(0, render.ReasonAdvance, true))
	r.OnSnapshot(ctx, snapshot(-1, render.ReasonReset))
	r.OnSnapshot(ctx, snapshot(0, render.ReasonAdvance, true))

	assert.Equal(t, 2, strings.Count(buf.String(), "1→2"))
}

func TestRenderer_EmptyTrace(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	New(buf).OnSnapshot(context.Background(), render.Snapshot{Reason: render.ReasonLoad, State: "idle", Step: -1, MaxSuperstep: -1})
	assert.Contains(t, buf.String(), "--------  load  (no messages)  [idle]")
}

func TestModule_Register(t *testing.T) {
	reg := registry.New(&Module{})
	buf := &testutil.SafeBuffer{}

	built, err := reg.Build(context.Background(), []string{Name}, registry.Deps{Out: buf})
	require.NoError(t, err)
	require.Len(t, built, 1)
	built[0].OnSnapshot(context.Background(), snapshot(0, render.ReasonAdvance, true))
	assert.Contains(t, buf.String(), "1→2")
}
