package app

import (
	"context"
	"errors"

	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/scheduler"
	"github.com/vk/supertrace/internal/session"
	"github.com/vk/supertrace/internal/trace"
)

// observers fans session events out to several observers.
type observers []session.Observer

func (o observers) ObserveLoad(ctx context.Context, r *session.LoadReport) {
	for _, obs := range o {
		obs.ObserveLoad(ctx, r)
	}
}

func (o observers) ObserveTransition(from, to scheduler.State) {
	for _, obs := range o {
		obs.ObserveTransition(from, to)
	}
}

// doneSignal reports when playback is finished: a snapshot in the done
// state reached every renderer before it, or an empty trace was loaded.
type doneSignal chan struct{}

func (d doneSignal) ObserveLoad(_ context.Context, r *session.LoadReport) {
	if errors.Is(r.Err, trace.ErrEmptyTrace) {
		d.signal()
	}
}

func (d doneSignal) ObserveTransition(_, _ scheduler.State) {}

func (d doneSignal) OnSnapshot(_ context.Context, s render.Snapshot) {
	if s.State == scheduler.Done.String() {
		d.signal()
	}
}

func (d doneSignal) signal() {
	select {
	case d <- struct{}{}:
	default:
	}
}
