package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/session"
)

// Module is the interface that all renderer modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Deps are the shared dependencies handed to every renderer factory.
type Deps struct {
	// Session lets network renderers accept playback commands.
	Session session.Session
	// Mux is the HTTP mux served by the app; nil when no server runs.
	Mux *http.ServeMux
	// Out is the terminal writer.
	Out io.Writer
}

// RegisteredRenderer describes a renderer factory.
type RegisteredRenderer struct {
	Description string
	// NeedsServer marks renderers that mount handlers on Deps.Mux.
	NeedsServer bool
	New         func(ctx context.Context, deps Deps) (render.Renderer, error)
}

// Registry holds the renderer factories of a single application instance.
type Registry struct {
	renderers map[string]*RegisteredRenderer
}

// New creates a registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{renderers: make(map[string]*RegisteredRenderer)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterRenderer adds a named renderer factory. Registering a name twice
// is a programming error.
func (r *Registry) RegisterRenderer(name string, rr *RegisteredRenderer) {
	if _, exists := r.renderers[name]; exists {
		panic(fmt.Sprintf("renderer with name '%s' already registered", name))
	}
	slog.Debug("Registering renderer.", "name", name)
	r.renderers[name] = rr
}

// Names returns the registered renderer names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a registered renderer.
func (r *Registry) Lookup(name string) (*RegisteredRenderer, bool) {
	rr, ok := r.renderers[name]
	return rr, ok
}

// NeedsServer reports whether any of the named renderers requires the HTTP
// server.
func (r *Registry) NeedsServer(names []string) bool {
	for _, name := range names {
		if rr, ok := r.renderers[name]; ok && rr.NeedsServer {
			return true
		}
	}
	return false
}

// Validate checks that every name is registered.
func (r *Registry) Validate(names []string) error {
	var errs []error
	for _, name := range names {
		if _, ok := r.renderers[name]; !ok {
			errs = append(errs, fmt.Errorf("unknown renderer %q (available: %v)", name, r.Names()))
		}
	}
	return errors.Join(errs...)
}

// Build constructs the named renderers in order. On failure, renderers
// built so far are closed.
func (r *Registry) Build(ctx context.Context, names []string, deps Deps) ([]render.Renderer, error) {
	logger := ctxlog.FromContext(ctx)
	if err := r.Validate(names); err != nil {
		return nil, err
	}

	built := make([]render.Renderer, 0, len(names))
	for _, name := range names {
		rr := r.renderers[name]
		if rr.NeedsServer && deps.Mux == nil {
			Close(ctx, built)
			return nil, fmt.Errorf("renderer %q needs the HTTP server", name)
		}
		rend, err := rr.New(ctx, deps)
		if err != nil {
			Close(ctx, built)
			return nil, fmt.Errorf("building renderer %q: %w", name, err)
		}
		logger.Debug("Renderer built.", "name", name)
		built = append(built, rend)
	}
	return built, nil
}

// Close closes every renderer that implements io.Closer.
func Close(ctx context.Context, renderers []render.Renderer) {
	for _, rend := range renderers {
		if c, ok := rend.(io.Closer); ok {
			if err := c.Close(); err != nil {
				ctxlog.FromContext(ctx).Warn("Failed to close renderer.", "error", err)
			}
		}
	}
}
