package inmemorystore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vk/supertrace/internal/statestore"
	"github.com/vk/supertrace/internal/trace"
)

// Store is an in-memory implementation of statestore.Store.
type Store struct {
	mu         sync.RWMutex
	visible    []bool                  // index: edge index
	nodes      map[int]struct{}        // known node IDs
	highlights map[int]trace.Highlight // only non-default highlights
}

// New creates a store for a trace with edgeCount edges and the given nodes.
func New(edgeCount int, nodeIDs []int) statestore.Store {
	nodes := make(map[int]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes[id] = struct{}{}
	}
	return &Store{
		visible:    make([]bool, edgeCount),
		nodes:      nodes,
		highlights: make(map[int]trace.Highlight),
	}
}

// Apply validates the whole batch, then commits it.
func (s *Store) Apply(ctx context.Context, b statestore.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, idx := range b.Visible {
		if idx < 0 || idx >= len(s.visible) {
			return fmt.Errorf("edge %d: %w", idx, statestore.ErrUnknownElement)
		}
	}
	for _, u := range b.Highlights {
		if _, ok := s.nodes[u.NodeID]; !ok {
			return fmt.Errorf("node %d: %w", u.NodeID, statestore.ErrUnknownElement)
		}
	}

	for _, idx := range b.Visible {
		s.visible[idx] = true
	}
	for _, u := range b.Highlights {
		if u.Highlight == trace.HighlightNone {
			delete(s.highlights, u.NodeID)
			continue
		}
		s.highlights[u.NodeID] = u.Highlight
	}
	return nil
}

// EdgeVisible reports whether an edge is visible. Unknown edges are hidden.
func (s *Store) EdgeVisible(ctx context.Context, index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.visible) {
		return false
	}
	return s.visible[index]
}

// Highlight returns the highlight of a node, HighlightNone if unset.
func (s *Store) Highlight(ctx context.Context, nodeID int) trace.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlights[nodeID]
}

// State returns a consistent copy of all display state.
func (s *Store) State(ctx context.Context) statestore.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return statestore.State{
		Visible:    slices.Clone(s.visible),
		Highlights: maps.Clone(s.highlights),
	}
}

// Reset hides all edges and clears all highlights.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.visible)
	clear(s.highlights)
	return nil
}
