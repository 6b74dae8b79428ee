package localsession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/supertrace/internal/clock"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/scheduler"
	"github.com/vk/supertrace/internal/session"
	"github.com/vk/supertrace/internal/testutil"
	"github.com/vk/supertrace/internal/trace"
)

type observer struct {
	mu          sync.Mutex
	loads       []*session.LoadReport
	transitions []scheduler.State
}

func (o *observer) ObserveLoad(_ context.Context, r *session.LoadReport) {
	o.mu.Lock()
	o.loads = append(o.loads, r)
	o.mu.Unlock()
}

func (o *observer) ObserveTransition(_, to scheduler.State) {
	o.mu.Lock()
	o.transitions = append(o.transitions, to)
	o.mu.Unlock()
}

func newSession(t *testing.T) (*Session, *testutil.Recorder, *clock.Fake, *observer) {
	t.Helper()
	rec := &testutil.Recorder{}
	clk := clock.NewFake(time.Unix(0, 0))
	obs := &observer{}
	s := New(context.Background(), session.Options{
		Renderer: rec,
		Delay:    100 * time.Millisecond,
		Clock:    clk,
		Observer: obs,
	})
	return s, rec, clk, obs
}

func TestControls_BeforeLoad(t *testing.T) {
	s, _, _, _ := newSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Start(ctx), session.ErrNoTrace)
	assert.ErrorIs(t, s.Stop(ctx), session.ErrNoTrace)
	assert.ErrorIs(t, s.Restart(ctx), session.ErrNoTrace)
	assert.ErrorIs(t, s.Step(ctx), session.ErrNoTrace)
	_, err := s.Status()
	assert.ErrorIs(t, err, session.ErrNoTrace)
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, session.ErrNoTrace)
	assert.NoError(t, s.Close(ctx))
}

func TestLoadTrace_ReportsAndAnnounces(t *testing.T) {
	s, rec, _, obs := newSession(t)
	ctx := context.Background()

	report, err := s.LoadTrace(ctx, testutil.LogSingleStep+"Message Passed,a,2,0\n")
	require.NoError(t, err)

	assert.NotEmpty(t, report.TraceID)
	assert.Equal(t, 3, report.Nodes)
	assert.Equal(t, 1, report.Edges)
	assert.Equal(t, 0, report.MaxSuperstep)
	assert.Equal(t, 3, report.Lines)
	assert.False(t, report.Empty)
	assert.NoError(t, report.Err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 3, report.Warnings[0].Line)

	snap, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, render.ReasonLoad, snap.Reason)
	assert.Equal(t, report.TraceID, snap.TraceID)
	assert.Zero(t, snap.VisibleEdges())

	require.Len(t, obs.loads, 1)
	assert.Same(t, report, obs.loads[0])

	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, report.TraceID, st.TraceID)
	assert.Equal(t, scheduler.Idle, st.State)
}

func TestLoadTrace_EmptyTrace(t *testing.T) {
	s, _, _, _ := newSession(t)
	ctx := context.Background()

	report, err := s.LoadTrace(ctx, "nothing to see here\n")
	require.NoError(t, err)
	assert.True(t, report.Empty)
	assert.ErrorIs(t, report.Err, trace.ErrEmptyTrace)
	assert.Equal(t, -1, report.MaxSuperstep)

	require.NoError(t, s.Start(ctx))
	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, scheduler.Done, st.State)
}

func TestPlayback_ThroughSession(t *testing.T) {
	s, rec, clk, obs := newSession(t)
	ctx := context.Background()

	_, err := s.LoadTrace(ctx, testutil.LogThreeSteps)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	clk.Advance(time.Second)

	assert.Equal(t, []int{-1, 0, 1, 2}, rec.Steps())
	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, scheduler.Done, st.State)
	assert.Equal(t, []scheduler.State{scheduler.Running, scheduler.Done}, obs.transitions)

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, cur.VisibleEdges())
}

func TestLoadTrace_ReplacesRunningTrace(t *testing.T) {
	s, rec, clk, _ := newSession(t)
	ctx := context.Background()

	first, err := s.LoadTrace(ctx, testutil.LogThreeSteps)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	second, err := s.LoadTrace(ctx, testutil.LogTwoSteps)
	require.NoError(t, err)
	assert.NotEqual(t, first.TraceID, second.TraceID)

	rec.Reset()
	clk.Advance(time.Second)
	assert.Zero(t, rec.Len(), "the replaced trace must not keep advancing")

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.TraceID, cur.TraceID)
	assert.Zero(t, cur.VisibleEdges(), "a new load starts from a clean display state")
}

func TestStepAndRestart(t *testing.T) {
	s, rec, _, _ := newSession(t)
	ctx := context.Background()

	_, err := s.LoadTrace(ctx, testutil.LogTwoSteps)
	require.NoError(t, err)

	require.NoError(t, s.Step(ctx))
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Restart(ctx))

	assert.Equal(t, []int{-1, 0, -1, 0}, rec.Steps())
}

func TestClose_RejectsLoads(t *testing.T) {
	s, _, clk, _ := newSession(t)
	ctx := context.Background()

	_, err := s.LoadTrace(ctx, testutil.LogThreeSteps)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Zero(t, clk.Pending())

	_, err = s.LoadTrace(ctx, testutil.LogTwoSteps)
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestFactory(t *testing.T) {
	f := &SessionFactory{}
	s, err := f.NewSession(context.Background(), session.Options{})
	require.NoError(t, err)
	_, err = s.LoadTrace(context.Background(), testutil.LogSingleStep)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, scheduler.Done, st.State)
}
