package session

import (
	"context"
	"time"

	"github.com/vk/supertrace/internal/clock"
	"github.com/vk/supertrace/internal/logparser"
	"github.com/vk/supertrace/internal/render"
)

// Options configures a new session.
type Options struct {
	Renderer render.Renderer
	Markers  logparser.Markers
	Palette  render.Palette
	Delay    time.Duration
	// Clock overrides the real clock, for tests.
	Clock clock.Clock
	// Observer may be nil.
	Observer Observer
}

// SessionFactory creates sessions. Different implementations can back the
// display state with different stores.
type SessionFactory interface {
	NewSession(ctx context.Context, opts Options) (Session, error)
}
