package config

import (
	"errors"
	"fmt"
	"time"
)

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Playback  Playback
	Markers   Markers
	Palette   Palette
	Server    Server
	Renderers []string
	Watch     bool
}

// Playback controls the scheduler.
type Playback struct {
	StepDelay time.Duration
	// Autostart begins playback as soon as a trace is loaded.
	Autostart bool
	// ExitWhenDone stops a headless run once the last superstep is applied.
	ExitWhenDone bool
}

// Markers are the substrings that identify trace records.
type Markers struct {
	InitialNodes  string
	MessagePassed string
}

// Palette holds the renderer colors by node state.
type Palette struct {
	InitiallyActive string
	Inactive        string
	Source          string
	Target          string
}

// DefaultPort is used when a network renderer needs the HTTP server and no
// port is configured.
const DefaultPort = 8080

// Server configures the HTTP listener used by network renderers and the
// health, metrics and status endpoints. Port 0 starts the server only when
// a renderer needs it, on DefaultPort.
type Server struct {
	Port int
}

// Defaults returns the built-in configuration.
func Defaults() *Model {
	return &Model{
		Playback: Playback{
			StepDelay: 500 * time.Millisecond,
			Autostart: true,
		},
		Markers: Markers{
			InitialNodes:  "Initial nodes",
			MessagePassed: "Message Passed",
		},
		Palette: Palette{
			InitiallyActive: "red",
			Inactive:        "blue",
			Source:          "yellow",
			Target:          "orange",
		},
		Renderers: []string{"print"},
	}
}

// Validate checks the model for values no component can run with.
func (m *Model) Validate() error {
	var errs []error
	if m.Playback.StepDelay <= 0 {
		errs = append(errs, fmt.Errorf("playback.step_delay must be positive, got %s", m.Playback.StepDelay))
	}
	if m.Markers.InitialNodes == "" {
		errs = append(errs, errors.New("markers.initial_nodes must not be empty"))
	}
	if m.Markers.MessagePassed == "" {
		errs = append(errs, errors.New("markers.message_passed must not be empty"))
	}
	if m.Markers.InitialNodes != "" && m.Markers.InitialNodes == m.Markers.MessagePassed {
		errs = append(errs, errors.New("markers.initial_nodes and markers.message_passed must differ"))
	}
	if m.Server.Port < 0 || m.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be within 0-65535, got %d", m.Server.Port))
	}
	for field, v := range map[string]string{
		"palette.initially_active": m.Palette.InitiallyActive,
		"palette.inactive":         m.Palette.Inactive,
		"palette.source":           m.Palette.Source,
		"palette.target":           m.Palette.Target,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", field))
		}
	}
	seen := make(map[string]struct{}, len(m.Renderers))
	for _, r := range m.Renderers {
		if r == "" {
			errs = append(errs, errors.New("renderers must not contain empty names"))
			continue
		}
		if _, dup := seen[r]; dup {
			errs = append(errs, fmt.Errorf("renderer %q listed twice", r))
		}
		seen[r] = struct{}{}
	}
	return errors.Join(errs...)
}
