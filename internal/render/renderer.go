package render

import (
	"context"
	"sync"
)

// Renderer consumes snapshots. OnSnapshot is called synchronously from the
// scheduler, in publish order; implementations should return quickly and
// must not call Start or Restart on the scheduler from inside the callback.
type Renderer interface {
	OnSnapshot(ctx context.Context, s Snapshot)
}

// RendererFunc adapts a function into a Renderer.
type RendererFunc func(ctx context.Context, s Snapshot)

// OnSnapshot calls the underlying function.
func (f RendererFunc) OnSnapshot(ctx context.Context, s Snapshot) {
	if f == nil {
		return
	}
	f(ctx, s)
}

// Null is a no-op renderer for headless runs.
type Null struct{}

// OnSnapshot discards the snapshot.
func (Null) OnSnapshot(context.Context, Snapshot) {}

// Multi fans a snapshot out to several renderers in order.
type Multi []Renderer

// OnSnapshot forwards s to every renderer.
func (m Multi) OnSnapshot(ctx context.Context, s Snapshot) {
	for _, r := range m {
		if r != nil {
			r.OnSnapshot(ctx, s)
		}
	}
}

// Bridge forwards snapshots to a renderer that is attached after the
// publisher is built. Snapshots published before Update are dropped.
type Bridge struct {
	mu     sync.RWMutex
	target Renderer
}

// NewBridge constructs a bridge forwarding to target, which may be nil.
func NewBridge(target Renderer) *Bridge {
	return &Bridge{target: target}
}

// Update replaces the target renderer.
func (b *Bridge) Update(target Renderer) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.target = target
	b.mu.Unlock()
}

// OnSnapshot forwards s to the current target.
func (b *Bridge) OnSnapshot(ctx context.Context, s Snapshot) {
	if b == nil {
		return
	}
	b.mu.RLock()
	target := b.target
	b.mu.RUnlock()

	if target != nil {
		target.OnSnapshot(ctx, s)
	}
}
