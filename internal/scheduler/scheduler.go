package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vk/supertrace/internal/clock"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/graph"
	"github.com/vk/supertrace/internal/render"
)

// DefaultDelay is the pause between two supersteps.
const DefaultDelay = 500 * time.Millisecond

// StateListener observes state transitions. It is called with the
// scheduler lock held and must not call back into the scheduler.
type StateListener func(from, to State)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay sets the pause between supersteps.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithClock replaces the real clock, typically with a clock.Fake in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStateListener registers a transition observer.
func WithStateListener(l StateListener) Option {
	return func(s *Scheduler) {
		s.listener = l
	}
}

// Scheduler is the step-by-step playback state machine for one graph.
type Scheduler struct {
	mu        sync.Mutex
	publishMu sync.Mutex

	graph    graph.Graph
	renderer render.Renderer
	clock    clock.Clock
	delay    time.Duration
	listener StateListener

	state       State
	next        int
	lastApplied int
	timer       clock.Timer
	gen         uint64
	// runCtx carries the logger of the Start call into timer callbacks.
	runCtx context.Context
}

// New creates an idle scheduler over g that publishes to r.
func New(g graph.Graph, r render.Renderer, opts ...Option) *Scheduler {
	if r == nil {
		r = render.Null{}
	}
	s := &Scheduler{
		graph:       g,
		renderer:    r,
		clock:       clock.Real(),
		delay:       DefaultDelay,
		lastApplied: -1,
		runCtx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the configured pause between supersteps.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Status returns the current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Current returns the current display state as a snapshot.
func (s *Scheduler) Current(ctx context.Context) render.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx, render.ReasonLoad)
}

// Announce publishes the current display state with ReasonLoad, ordered
// with any other snapshot this scheduler publishes.
func (s *Scheduler) Announce(ctx context.Context) {
	s.mu.Lock()
	snap := s.snapshotLocked(ctx, render.ReasonLoad)
	s.unlockAndPublish(ctx, []render.Snapshot{snap})
}

// Start begins or resumes playback. From Idle it applies the next pending
// superstep immediately; from Done it replays from superstep 0 over the
// current display state. Calling Start while Running returns an
// *InvalidTransitionError.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return &InvalidTransitionError{Op: "start", State: s.state}
	}
	snaps, err := s.startLocked(ctx)
	s.unlockAndPublish(ctx, snaps)
	return err
}

// Stop pauses playback, cancelling the pending advance. Display state is
// preserved. Stop is a no-op unless Running.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return nil
	}
	s.cancelLocked()
	s.setState(ctx, Idle)
	ctxlog.FromContext(ctx).Debug("Playback paused.", "next_step", s.next)
	return nil
}

// Restart cancels any pending advance, resets all display state, publishes
// the reset snapshot and starts again from superstep 0.
func (s *Scheduler) Restart(ctx context.Context) error {
	s.mu.Lock()
	s.cancelLocked()
	if err := s.graph.Reset(ctx); err != nil {
		if s.state == Running {
			s.setState(ctx, Idle)
		}
		s.mu.Unlock()
		return err
	}
	s.next = 0
	s.lastApplied = -1
	s.setState(ctx, Idle)
	snaps := []render.Snapshot{s.snapshotLocked(ctx, render.ReasonReset)}

	more, err := s.startLocked(ctx)
	s.unlockAndPublish(ctx, append(snaps, more...))
	return err
}

// Step applies exactly one superstep without scheduling further advances.
// It is only valid while Idle.
func (s *Scheduler) Step(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		st := s.state
		s.mu.Unlock()
		return &InvalidTransitionError{Op: "step", State: st}
	}
	if s.graph.MaxSuperstep() < 0 {
		s.setState(ctx, Done)
		s.mu.Unlock()
		return nil
	}

	snap, err := s.applyLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.lastApplied >= s.graph.MaxSuperstep() {
		s.setState(ctx, Done)
		snap.State = s.state.String()
	}
	s.unlockAndPublish(ctx, []render.Snapshot{snap})
	return nil
}

// startLocked performs the Start transition with s.mu held and returns the
// snapshots to publish.
func (s *Scheduler) startLocked(ctx context.Context) ([]render.Snapshot, error) {
	logger := ctxlog.FromContext(ctx)

	if s.graph.MaxSuperstep() < 0 {
		logger.Debug("Empty trace, nothing to play.")
		s.setState(ctx, Done)
		return nil, nil
	}
	if s.state == Done {
		s.next = 0
	}

	prev := s.state
	s.runCtx = context.WithoutCancel(ctx)
	s.setState(ctx, Running)
	logger.Debug("Playback started.", "from_step", s.next, "max_superstep", s.graph.MaxSuperstep())

	snap, err := s.advanceLocked(ctx)
	if err != nil {
		s.setState(ctx, prev)
		return nil, err
	}
	return []render.Snapshot{snap}, nil
}

// advanceLocked applies the next superstep of a run and either finishes the
// run or schedules the following advance.
func (s *Scheduler) advanceLocked(ctx context.Context) (render.Snapshot, error) {
	snap, err := s.applyLocked(ctx)
	if err != nil {
		return render.Snapshot{}, err
	}

	if s.lastApplied >= s.graph.MaxSuperstep() {
		s.setState(ctx, Done)
		ctxlog.FromContext(ctx).Info("Playback finished.", "steps", s.lastApplied+1)
	} else {
		s.scheduleLocked()
	}
	snap.State = s.state.String()
	return snap, nil
}

// applyLocked applies s.next and advances the cursor.
func (s *Scheduler) applyLocked(ctx context.Context) (render.Snapshot, error) {
	step := s.next
	if _, err := s.graph.ApplyStep(ctx, step); err != nil {
		return render.Snapshot{}, err
	}
	s.lastApplied = step
	s.next = step + 1
	return s.snapshotLocked(ctx, render.ReasonAdvance), nil
}

func (s *Scheduler) scheduleLocked() {
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.onTimer(gen) })
}

func (s *Scheduler) onTimer(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Running {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ctx := s.runCtx

	snap, err := s.advanceLocked(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Superstep advance failed, pausing playback.", "step", s.next, "error", err)
		s.setState(ctx, Idle)
		s.mu.Unlock()
		return
	}
	s.unlockAndPublish(ctx, []render.Snapshot{snap})
}

// cancelLocked drops the pending timer and invalidates any callback that is
// already in flight.
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) setState(ctx context.Context, to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	ctxlog.FromContext(ctx).Debug("Scheduler state changed.", "from", from.String(), "to", to.String())
	if s.listener != nil {
		s.listener(from, to)
	}
}

func (s *Scheduler) statusLocked() Status {
	return Status{
		State:        s.state,
		NextStep:     s.next,
		LastApplied:  s.lastApplied,
		MaxSuperstep: s.graph.MaxSuperstep(),
	}
}

func (s *Scheduler) snapshotLocked(ctx context.Context, reason render.Reason) render.Snapshot {
	snap := s.graph.Snapshot(ctx)
	snap.Reason = reason
	snap.State = s.state.String()
	snap.Step = s.lastApplied
	return snap
}

// unlockAndPublish releases s.mu and delivers snaps in order. The publish
// lock is taken before s.mu is released so concurrent publishers cannot
// reorder snapshots.
func (s *Scheduler) unlockAndPublish(ctx context.Context, snaps []render.Snapshot) {
	if len(snaps) == 0 {
		s.mu.Unlock()
		return
	}
	s.publishMu.Lock()
	s.mu.Unlock()
	defer s.publishMu.Unlock()

	for _, snap := range snaps {
		s.renderer.OnSnapshot(ctx, snap)
	}
}
