package inmemorystore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/statestore"
	"github.com/vk/supertrace/internal/trace"
)

func TestApplyAndRead(t *testing.T) {
	s := New(3, []int{1, 2, 3})
	ctx := context.Background()

	assert.False(t, s.EdgeVisible(ctx, 0))
	assert.Equal(t, trace.HighlightNone, s.Highlight(ctx, 1))

	err := s.Apply(ctx, statestore.Batch{
		Visible: []int{0, 2},
		Highlights: []statestore.HighlightUpdate{
			{NodeID: 1, Highlight: trace.HighlightSource},
			{NodeID: 2, Highlight: trace.HighlightTarget},
		},
	})
	require.NoError(t, err)

	assert.True(t, s.EdgeVisible(ctx, 0))
	assert.False(t, s.EdgeVisible(ctx, 1))
	assert.True(t, s.EdgeVisible(ctx, 2))
	assert.False(t, s.EdgeVisible(ctx, 99))
	assert.Equal(t, trace.HighlightSource, s.Highlight(ctx, 1))
	assert.Equal(t, trace.HighlightTarget, s.Highlight(ctx, 2))
}

func TestApply_LastWriterWins(t *testing.T) {
	s := New(0, []int{1})
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, statestore.Batch{Highlights: []statestore.HighlightUpdate{
		{NodeID: 1, Highlight: trace.HighlightSource},
		{NodeID: 1, Highlight: trace.HighlightTarget},
	}}))
	assert.Equal(t, trace.HighlightTarget, s.Highlight(ctx, 1))

	require.NoError(t, s.Apply(ctx, statestore.Batch{Highlights: []statestore.HighlightUpdate{
		{NodeID: 1, Highlight: trace.HighlightNone},
	}}))
	assert.Equal(t, trace.HighlightNone, s.Highlight(ctx, 1))
	assert.Empty(t, s.State(ctx).Highlights)
}

func TestApply_IsAllOrNothing(t *testing.T) {
	s := New(2, []int{1, 2})
	ctx := context.Background()

	t.Run("unknown edge", func(t *testing.T) {
		err := s.Apply(ctx, statestore.Batch{
			Visible:    []int{0, 5},
			Highlights: []statestore.HighlightUpdate{{NodeID: 1, Highlight: trace.HighlightSource}},
		})
		require.ErrorIs(t, err, statestore.ErrUnknownElement)
		assert.False(t, s.EdgeVisible(ctx, 0))
		assert.Equal(t, trace.HighlightNone, s.Highlight(ctx, 1))
	})

	t.Run("unknown node", func(t *testing.T) {
		err := s.Apply(ctx, statestore.Batch{
			Visible:    []int{1},
			Highlights: []statestore.HighlightUpdate{{NodeID: 42, Highlight: trace.HighlightTarget}},
		})
		require.ErrorIs(t, err, statestore.ErrUnknownElement)
		assert.Equal(t, 0, s.State(ctx).VisibleCount())
	})
}

func TestReset(t *testing.T) {
	s := New(2, []int{1, 2})
	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, statestore.Batch{
		Visible:    []int{0, 1},
		Highlights: []statestore.HighlightUpdate{{NodeID: 2, Highlight: trace.HighlightTarget}},
	}))

	require.NoError(t, s.Reset(ctx))

	st := s.State(ctx)
	assert.Equal(t, []bool{false, false}, st.Visible)
	assert.Empty(t, st.Highlights)
}

func TestState_IsACopy(t *testing.T) {
	s := New(1, []int{1})
	ctx := context.Background()

	st := s.State(ctx)
	st.Visible[0] = true
	st.Highlights[1] = trace.HighlightSource

	assert.False(t, s.EdgeVisible(ctx, 0))
	assert.Equal(t, trace.HighlightNone, s.Highlight(ctx, 1))
}

// TestStore_ConcurrentAccess verifies that batches and reads can interleave
// from many goroutines without races or torn states.
func TestStore_ConcurrentAccess(t *testing.T) {
	const edges = 100
	nodes := make([]int, edges)
	for i := range nodes {
		nodes[i] = i
	}
	s := New(edges, nodes)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(edges * 2)
	for i := 0; i < edges; i++ {
		go func(i int) {
			defer wg.Done()
			err := s.Apply(ctx, statestore.Batch{
				Visible:    []int{i},
				Highlights: []statestore.HighlightUpdate{{NodeID: i, Highlight: trace.HighlightSource}},
			})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			st := s.State(ctx)
			// Each batch reveals one edge and highlights one node together.
			assert.Equal(t, st.VisibleCount(), len(st.Highlights))
		}()
	}
	wg.Wait()

	assert.Equal(t, edges, s.State(ctx).VisibleCount())
}
