// Package scheduler drives the step-by-step reveal of a trace.
//
// # How It Works
//
// The Scheduler is an explicit state machine:
//
//	        Start                     last step applied
//	Idle ──────────▶ Running(step) ─────────────────────▶ Done
//	 ▲                 │   ▲                               │
//	 └──── Stop ───────┘   └──── timer: apply step+1 ──────┘ Start (replay)
//
// Start applies the next superstep synchronously, publishes a snapshot and,
// unless that was the last superstep, schedules the following advance after
// a fixed delay. Each advance applies one superstep atomically through the
// graph facade and publishes a snapshot. Stop pauses (state is preserved);
// Start resumes from the paused step. Restart resets all display state and
// begins again from step 0.
//
// # Concurrency
//
// There is one logical thread of control. A mutex guards all scheduler
// state, timer callbacks take the same mutex, and at most one timer handle
// is pending at any time. Every scheduled callback carries a generation
// number; Stop and Restart bump the generation, so a callback that raced
// with cancellation is discarded instead of advancing a stale run.
//
// Snapshots are delivered after the mutex is released, under a second
// lock that preserves publish order. Renderers may therefore call Status
// or Stop from inside OnSnapshot.
//
// # Time
//
// All timing goes through clock.Clock, so tests drive playback with a
// virtual clock and never sleep.
package scheduler
