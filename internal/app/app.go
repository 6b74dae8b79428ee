package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/supertrace/internal/config"
	"github.com/vk/supertrace/internal/ctxlog"
	"github.com/vk/supertrace/internal/localsession"
	"github.com/vk/supertrace/internal/logparser"
	"github.com/vk/supertrace/internal/metrics"
	"github.com/vk/supertrace/internal/registry"
	"github.com/vk/supertrace/internal/render"
	"github.com/vk/supertrace/internal/session"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
	appCfg   *Config
	promReg  *prometheus.Registry
	metrics  *metrics.Recorder
	sessions session.SessionFactory
}

// NewApp is the constructor for the main application. Log records go to
// logW and terminal renderers write to outW. Configuration files are read
// through loader and command-line overrides from appCfg are applied on top.
func NewApp(outW, logW io.Writer, appCfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appCfg.LogLevel, appCfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, config.Defaults(), appCfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(model, appCfg)
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "renderers", model.Renderers, "step_delay", model.Playback.StepDelay)

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	if err := reg.Validate(model.Renderers); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Renderer modules registered.", "available", reg.Names())

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   model,
		appCfg:   appCfg,
		promReg:  promReg,
		metrics:  metrics.New(promReg),
		sessions: &localsession.SessionFactory{},
	}, nil
}

// Config returns the merged configuration model.
func (a *App) Config() *config.Model { return a.config }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

func applyOverrides(m *config.Model, c *Config) {
	if c.StepDelay > 0 {
		m.Playback.StepDelay = c.StepDelay
	}
	if c.Port > 0 {
		m.Server.Port = c.Port
	}
	if len(c.Renderers) > 0 {
		m.Renderers = append([]string(nil), c.Renderers...)
	}
	if c.Autostart != nil {
		m.Playback.Autostart = *c.Autostart
	}
	if c.Watch != nil {
		m.Watch = *c.Watch
	}
	if c.ExitWhenDone != nil {
		m.Playback.ExitWhenDone = *c.ExitWhenDone
	}
}

func (a *App) markers() logparser.Markers {
	return logparser.Markers{
		InitialNodes:  a.config.Markers.InitialNodes,
		MessagePassed: a.config.Markers.MessagePassed,
	}
}

func (a *App) palette() render.Palette {
	return render.Palette{
		InitiallyActive: a.config.Palette.InitiallyActive,
		Inactive:        a.config.Palette.Inactive,
		Source:          a.config.Palette.Source,
		Target:          a.config.Palette.Target,
	}
}
