package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/trace"
)

func TestBuild_Empty(t *testing.T) {
	g := Build(context.Background(), nil)
	require.NotNil(t, g)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestBuild_NodesAreExactlyReferencedIDs(t *testing.T) {
	msgs := []trace.Message{
		{Index: 0, Src: 3, Dst: 1, Superstep: 0},
		{Index: 1, Src: 1, Dst: 3, Superstep: 0},
		{Index: 2, Src: 9, Dst: 9, Superstep: 1},
		{Index: 3, Src: 1, Dst: 4, Superstep: 2},
	}

	g := Build(context.Background(), msgs)

	assert.Equal(t, []int{3, 1, 9, 4}, g.Nodes)

	referenced := map[int]bool{}
	for _, m := range msgs {
		referenced[m.Src] = true
		referenced[m.Dst] = true
	}
	assert.Len(t, g.Nodes, len(referenced))
	for _, id := range g.Nodes {
		assert.True(t, referenced[id], "node %d was not referenced by any message", id)
	}
}

func TestBuild_OneEdgePerMessage(t *testing.T) {
	msgs := []trace.Message{
		{Index: 0, Src: 1, Dst: 2, Superstep: 0},
		{Index: 1, Src: 1, Dst: 2, Superstep: 0},
		{Index: 2, Src: 1, Dst: 2, Superstep: 3},
	}

	g := Build(context.Background(), msgs)

	require.Len(t, g.Edges, 3)
	for i, e := range g.Edges {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, 1, e.Source)
		assert.Equal(t, 2, e.Target)
	}
}
