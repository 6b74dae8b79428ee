// Package localsession provides a concrete implementation of the
// session.Session and session.SessionFactory interfaces for local,
// in-process playback over an in-memory display store.
package localsession

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/graph"
	"github.com/vk/supertrace/internal/inmemorystore"
	"github.com/vk/supertrace/internal/logparser"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/scheduler"
	"github.com/vk/supertrace/internal/session"
	"github.com/vk/supertrace/internal/trace"
	"github.com/vk/supertrace/internal/tracemodel"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

// NewSession creates a session with no trace loaded.
func (f *SessionFactory) NewSession(ctx context.Context, opts session.Options) (session.Session, error) {
	return New(ctx, opts), nil
}

// Session implements session.Session for local runs.
type Session struct {
	opts session.Options

	mu      sync.Mutex
	traceID string
	sched   *scheduler.Scheduler
	closed  bool
}

// New creates a local session.
func New(ctx context.Context, opts session.Options) *Session {
	if opts.Renderer == nil {
		opts.Renderer = render.Null{}
	}
	if opts.Markers == (logparser.Markers{}) {
		opts.Markers = logparser.DefaultMarkers()
	}
	if opts.Palette == (render.Palette{}) {
		opts.Palette = render.DefaultPalette()
	}
	ctxlog.FromContext(ctx).Debug("Local session created.", "delay", opts.Delay)
	return &Session{opts: opts}
}

// LoadTrace implements session.Session.
func (s *Session) LoadTrace(ctx context.Context, text string) (*session.LoadReport, error) {
	logger := ctxlog.FromContext(ctx)

	res, err := logparser.ParseString(ctx, text, s.opts.Markers)
	if err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	model, err := tracemodel.New(ctx, res.InitiallyActive, res.Messages)
	if err != nil {
		return nil, fmt.Errorf("building trace model: %w", err)
	}

	traceID := uuid.NewString()
	store := inmemorystore.New(model.EdgeCount(), model.NodeIDs())
	g := graph.New(traceID, model, store, s.opts.Palette)

	schedOpts := []scheduler.Option{scheduler.WithDelay(s.opts.Delay)}
	if s.opts.Clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(s.opts.Clock))
	}
	if s.opts.Observer != nil {
		schedOpts = append(schedOpts, scheduler.WithStateListener(s.opts.Observer.ObserveTransition))
	}
	sched := scheduler.New(g, s.opts.Renderer, schedOpts...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, session.ErrClosed
	}
	prev := s.sched
	s.sched = sched
	s.traceID = traceID
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Stop(ctx); err != nil {
			logger.Warn("Failed to stop previous trace.", "error", err)
		}
	}

	report := &session.LoadReport{
		TraceID:      traceID,
		Nodes:        model.NodeCount(),
		Edges:        model.EdgeCount(),
		MaxSuperstep: model.MaxSuperstep(),
		Lines:        res.Lines,
		Warnings:     res.Warnings,
		Empty:        model.Empty(),
	}
	if report.Empty {
		report.Err = trace.ErrEmptyTrace
		logger.Warn("Trace has nothing to play.", "error", report.Err)
	}
	for _, w := range res.Warnings {
		logger.Warn("Skipped malformed trace line.", "line", w.Line, "field", w.Field, "text", w.Text, "reason", w.Reason)
	}
	logger.Info("Trace loaded.",
		"trace_id", traceID,
		"nodes", report.Nodes,
		"edges", report.Edges,
		"max_superstep", report.MaxSuperstep,
		"warnings", len(report.Warnings),
		"step_delay", sched.Delay(),
	)
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveLoad(ctx, report)
	}

	sched.Announce(ctxlog.With(ctx, "trace_id", traceID))
	return report, nil
}

// Start implements session.Session.
func (s *Session) Start(ctx context.Context) error {
	sched, ctx, err := s.current(ctx)
	if err != nil {
		return err
	}
	return sched.Start(ctx)
}

// Stop implements session.Session.
func (s *Session) Stop(ctx context.Context) error {
	sched, ctx, err := s.current(ctx)
	if err != nil {
		return err
	}
	return sched.Stop(ctx)
}

// Restart implements session.Session.
func (s *Session) Restart(ctx context.Context) error {
	sched, ctx, err := s.current(ctx)
	if err != nil {
		return err
	}
	return sched.Restart(ctx)
}

// Step implements session.Session.
func (s *Session) Step(ctx context.Context) error {
	sched, ctx, err := s.current(ctx)
	if err != nil {
		return err
	}
	return sched.Step(ctx)
}

// Status implements session.Session.
func (s *Session) Status() (session.Status, error) {
	s.mu.Lock()
	sched, traceID := s.sched, s.traceID
	s.mu.Unlock()
	if sched == nil {
		return session.Status{}, session.ErrNoTrace
	}
	return session.Status{Status: sched.Status(), TraceID: traceID}, nil
}

// Current implements session.Session.
func (s *Session) Current(ctx context.Context) (render.Snapshot, error) {
	sched, ctx, err := s.current(ctx)
	if err != nil {
		return render.Snapshot{}, err
	}
	return sched.Current(ctx), nil
}

// Close stops playback. Later loads fail; controls on the last trace keep
// answering Status and Current.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	sched := s.sched
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Local session closing.")
	if sched == nil {
		return nil
	}
	return sched.Stop(ctx)
}

// current returns the scheduler of the loaded trace and a context tagged
// with its trace ID.
func (s *Session) current(ctx context.Context) (*scheduler.Scheduler, context.Context, error) {
	s.mu.Lock()
	sched, traceID := s.sched, s.traceID
	s.mu.Unlock()
	if sched == nil {
		return nil, ctx, session.ErrNoTrace
	}
	return sched, ctxlog.With(ctx, "trace_id", traceID), nil
}
