package testutil

import (
	"context"
	"sync"

	"github.com/vk/supertrace/internal/render"
)

// Recorder is a renderer that keeps every snapshot it receives.
type Recorder struct {
	mu    sync.Mutex
	snaps []render.Snapshot
	// OnRecord, if set, is called after each snapshot is stored.
	OnRecord func(render.Snapshot)
}

// OnSnapshot implements render.Renderer.
func (r *Recorder) OnSnapshot(_ context.Context, s render.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	hook := r.OnRecord
	r.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// Snapshots returns a copy of everything recorded so far.
func (r *Recorder) Snapshots() []render.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]render.Snapshot, len(r.snaps))
	copy(out, r.snaps)
	return out
}

// Len returns the number of recorded snapshots.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// Last returns the most recent snapshot.
func (r *Recorder) Last() (render.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return render.Snapshot{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

// Steps returns the Step field of every recorded snapshot, in order.
func (r *Recorder) Steps() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Step
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.snaps = nil
	r.mu.Unlock()
}
