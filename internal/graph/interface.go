package graph

import (
	"context"

	"github.com/vk/supertrace/internal/render"
)

// Graph is the scheduler's view of one loaded trace.
type Graph interface {
	// TraceID identifies the load this graph was built from.
	TraceID() string

	// MaxSuperstep returns the highest superstep, or -1 for an empty trace.
	MaxSuperstep() int

	// ApplyStep reveals every edge of the given superstep and highlights the
	// endpoints of its messages (source first, then target, in log order;
	// the last write for a node wins). The whole step is applied or nothing
	// is. It returns the number of messages applied.
	ApplyStep(ctx context.Context, step int) (int, error)

	// Reset hides all edges and clears all highlights.
	Reset(ctx context.Context) error

	// Snapshot returns the full display state. Reason, State and Step are
	// left for the caller to fill in.
	Snapshot(ctx context.Context) render.Snapshot
}
