package tracemodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/trace"
)

func msgs(triples ...[3]int) []trace.Message {
	out := make([]trace.Message, len(triples))
	for i, tr := range triples {
		out[i] = trace.Message{Index: i, Src: tr[0], Dst: tr[1], Superstep: tr[2]}
	}
	return out
}

func newModel(t *testing.T, active []int, m []trace.Message) *Model {
	t.Helper()
	model, err := New(context.Background(), active, m)
	require.NoError(t, err)
	return model
}

func TestNew_SingleMessageTrace(t *testing.T) {
	m := newModel(t, []int{1, 2}, msgs([3]int{1, 3, 0}))

	assert.Equal(t, []trace.Node{
		{ID: 1, InitiallyActive: true},
		{ID: 2, InitiallyActive: true},
		{ID: 3, InitiallyActive: false},
	}, m.Nodes())
	assert.Equal(t, []int{1, 2, 3}, m.NodeIDs())
	assert.Equal(t, []trace.Edge{{Index: 0, Source: 1, Target: 3}}, m.Edges())
	assert.Equal(t, 0, m.MaxSuperstep())
	assert.False(t, m.Empty())
}

func TestNodes_IncludesInitiallyActiveWithoutMessages(t *testing.T) {
	m := newModel(t, []int{7}, msgs([3]int{1, 2, 0}))

	assert.Equal(t, []int{1, 2, 7}, m.NodeIDs())
	n, ok := m.NodeByID(7)
	require.True(t, ok)
	assert.True(t, n.InitiallyActive)
	assert.Zero(t, m.Degree(7))
}

func TestNew_EmptyTrace(t *testing.T) {
	m := newModel(t, []int{4}, nil)

	assert.True(t, m.Empty())
	assert.Equal(t, -1, m.MaxSuperstep())
	assert.Empty(t, m.MessagesAt(0))
	assert.Equal(t, 1, m.NodeCount())
}

func TestNew_RejectsInconsistentMessages(t *testing.T) {
	_, err := New(context.Background(), nil, []trace.Message{{Index: 3, Src: 1, Dst: 2}})
	require.ErrorContains(t, err, "index out of order")

	_, err = New(context.Background(), nil, []trace.Message{{Index: 0, Src: 1, Dst: 2, Superstep: -2}})
	require.ErrorContains(t, err, "negative superstep")
}

func TestMessagesAt_PartitionsAllMessages(t *testing.T) {
	all := msgs(
		[3]int{1, 2, 0},
		[3]int{2, 3, 2},
		[3]int{1, 3, 0},
		[3]int{3, 1, 4},
		[3]int{2, 1, 2},
	)
	m := newModel(t, nil, all)
	require.Equal(t, 4, m.MaxSuperstep())

	seen := make(map[int]int)
	for step := 0; step <= m.MaxSuperstep(); step++ {
		for _, msg := range m.MessagesAt(step) {
			assert.Equal(t, step, msg.Superstep)
			seen[msg.Index]++
		}
	}
	require.Len(t, seen, len(all))
	for idx, n := range seen {
		assert.Equal(t, 1, n, "message %d seen %d times", idx, n)
	}

	// Log order is preserved within a step.
	assert.Equal(t, []int{0, 2}, indices(m.MessagesAt(0)))
	assert.Equal(t, []int{1, 4}, indices(m.MessagesAt(2)))
	assert.Empty(t, m.MessagesAt(1), "gaps between supersteps are empty, not errors")
}

func TestMessagesAt_OutOfRange(t *testing.T) {
	m := newModel(t, nil, msgs([3]int{1, 2, 0}))
	assert.Empty(t, m.MessagesAt(-1))
	assert.Empty(t, m.MessagesAt(1))
	assert.NotNil(t, m.MessagesAt(99))
}

func TestMessagesAt_ReturnsCopy(t *testing.T) {
	m := newModel(t, nil, msgs([3]int{1, 2, 0}))
	got := m.MessagesAt(0)
	got[0].Src = 42
	assert.Equal(t, 1, m.MessagesAt(0)[0].Src)
}

func TestLookups(t *testing.T) {
	m := newModel(t, []int{7}, msgs(
		[3]int{1, 2, 0},
		[3]int{1, 2, 1},
		[3]int{2, 1, 1},
		[3]int{1, 2, 2},
		[3]int{5, 5, 2},
	))

	t.Run("node by id", func(t *testing.T) {
		n, ok := m.NodeByID(7)
		require.True(t, ok)
		assert.True(t, n.InitiallyActive)

		_, ok = m.NodeByID(100)
		assert.False(t, ok)
	})

	t.Run("edge between returns first match", func(t *testing.T) {
		e, ok := m.EdgeBetween(1, 2)
		require.True(t, ok)
		assert.Equal(t, 0, e.Index)

		_, ok = m.EdgeBetween(2, 5)
		assert.False(t, ok)
	})

	t.Run("edge for message is exact", func(t *testing.T) {
		e, ok := m.EdgeFor(m.Messages()[3])
		require.True(t, ok)
		assert.Equal(t, 3, e.Index)

		_, ok = m.EdgeFor(trace.Message{Index: 3, Src: 9, Dst: 9})
		assert.False(t, ok)
	})

	t.Run("multiplicity and parallel count", func(t *testing.T) {
		assert.Equal(t, 3, m.Multiplicity(0))
		assert.Equal(t, 2, m.ParallelCount(0))
		assert.Equal(t, 1, m.Multiplicity(2))
		assert.Equal(t, 0, m.ParallelCount(2))
		assert.Equal(t, 0, m.Multiplicity(99))
	})

	t.Run("degree", func(t *testing.T) {
		assert.Equal(t, 4, m.Degree(1))
		assert.Equal(t, 4, m.Degree(2))
		assert.Equal(t, 1, m.Degree(5), "self-loop counts once")
		assert.Equal(t, 0, m.Degree(7))
	})
}

func indices(ms []trace.Message) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Index
	}
	return out
}
