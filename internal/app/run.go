package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/vk/supertrace/internal/config"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/session"
	"github.com/vk/supertrace/internal/watch"
	"github.com/vk/supertrace/modules/socketio_client"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run executes the main application logic until ctx is cancelled or, for
// runs that exit on completion, until playback is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.logger.Debug("App.Run method finished.")

	if a.appCfg.FollowURL != "" {
		return a.follow(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(doneSignal, 1)
	bridge := render.NewBridge(nil)
	sess, err := a.sessions.NewSession(runCtx, session.Options{
		Renderer: bridge,
		Markers:  a.markers(),
		Palette:  a.palette(),
		Delay:    a.config.Playback.StepDelay,
		Observer: observers{a.metrics, done},
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	var mux *http.ServeMux
	port := a.config.Server.Port
	if port > 0 || a.registry.NeedsServer(a.config.Renderers) {
		if port == 0 {
			port = config.DefaultPort
		}
		mux = a.newMux(sess)
	}

	renderers, err := a.registry.Build(runCtx, a.config.Renderers, registry.Deps{
		Session: sess,
		Mux:     mux,
		Out:     a.outW,
	})
	if err != nil {
		_ = sess.Close(ctx)
		return err
	}
	defer func() {
		_ = sess.Close(ctx)
		registry.Close(ctx, renderers)
	}()
	bridge.Update(render.Multi(append(renderers, a.metrics, done)))

	if err := a.load(runCtx, sess); err != nil {
		return err
	}

	exitWhenDone := a.config.Playback.ExitWhenDone || (mux == nil && !a.config.Watch)
	if exitWhenDone && !a.config.Playback.Autostart {
		a.logger.Warn("Nothing will start playback: autostart is off and no control surface is running.")
		return nil
	}

	g, gctx := errgroup.WithContext(runCtx)

	if mux != nil {
		srv := &http.Server{Handler: mux}
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", port, err)
		}
		a.logger.Info("HTTP server listening.", "address", ln.Addr().String())

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancelShutdown()
			a.logger.Debug("Shutting down HTTP server.")
			return srv.Shutdown(shutdownCtx)
		})
	}

	if a.config.Watch {
		w, err := watch.New(a.appCfg.TracePath, 0, func(ctx context.Context, _ string) error {
			if err := a.load(ctx, sess); err != nil {
				return err
			}
			if a.config.Playback.Autostart {
				return sess.Start(ctx)
			}
			return nil
		})
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		a.logger.Info("Watching trace file.", "path", w.Path())
		g.Go(func() error { return w.Run(gctx) })
	}

	if exitWhenDone {
		g.Go(func() error {
			select {
			case <-done:
				a.logger.Info("Playback complete, exiting.")
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	if a.config.Playback.Autostart {
		if err := sess.Start(runCtx); err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("failed to start playback: %w", err)
		}
	}

	return g.Wait()
}

// load reads the trace file into sess.
func (a *App) load(ctx context.Context, sess session.Session) error {
	data, err := os.ReadFile(a.appCfg.TracePath)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	if _, err := sess.LoadTrace(ctx, string(data)); err != nil {
		return fmt.Errorf("failed to load trace %s: %w", a.appCfg.TracePath, err)
	}
	return nil
}

// follow mirrors a remote session into the local terminal renderers.
func (a *App) follow(ctx context.Context) error {
	var names []string
	for _, name := range a.config.Renderers {
		if rr, ok := a.registry.Lookup(name); ok && !rr.NeedsServer {
			names = append(names, name)
		}
	}
	renderers, err := a.registry.Build(ctx, names, registry.Deps{Out: a.outW})
	if err != nil {
		return err
	}
	defer registry.Close(ctx, renderers)

	var commands []string
	if a.appCfg.Autostart != nil && *a.appCfg.Autostart {
		commands = append(commands, "restart")
	}
	return socketio_client.Follow(ctx, socketio_client.Input{
		URL:      a.appCfg.FollowURL,
		Commands: commands,
	}, render.Multi(append(renderers, a.metrics)))
}
