// Package session defines the control surface over a loaded trace. A
// session owns at most one trace at a time; every load replaces the
// previous trace wholesale.
package session

import (
	"context"
	"errors"

	"github.com/vk/supertrace/internal/logparser"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/scheduler"
)

// ErrNoTrace is returned by playback controls before the first load.
var ErrNoTrace = errors.New("session: no trace loaded")

// ErrClosed is returned by LoadTrace after Close.
var ErrClosed = errors.New("session: closed")

// LoadReport summarizes a successful load.
type LoadReport struct {
	TraceID      string
	Nodes        int
	Edges        int
	MaxSuperstep int
	// Lines is the number of input lines read.
	Lines int
	// Warnings holds the recovered parse errors, in line order.
	Warnings []*logparser.ParseError
	// Empty is set when the trace has no messages; playback completes
	// immediately.
	Empty bool
	// Err is trace.ErrEmptyTrace for an empty trace and nil otherwise. It
	// does not fail the load.
	Err error
}

// Status is the scheduler status of the current trace.
type Status struct {
	scheduler.Status
	TraceID string
}

// Observer receives session-level events. Implementations must be safe
// for concurrent use and must not call back into the session.
type Observer interface {
	ObserveLoad(ctx context.Context, report *LoadReport)
	ObserveTransition(from, to scheduler.State)
}

// Session is the control surface used by the CLI, the socket.io control
// channel and the file watcher.
type Session interface {
	// LoadTrace parses text, replaces the current trace and publishes a
	// load snapshot. Playback of the previous trace is stopped first.
	LoadTrace(ctx context.Context, text string) (*LoadReport, error)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Step(ctx context.Context) error

	Status() (Status, error)
	// Current returns the display state of the current trace.
	Current(ctx context.Context) (render.Snapshot, error)

	// Close stops playback and releases any resources held by the session.
	Close(ctx context.Context) error
}
