// Package schema holds the HCL decoding targets for configuration files.
// Every attribute is an hcl.Expression so the loader can tell an absent
// attribute (a null value) from one set to its zero value, and evaluate it
// against the file's evaluation context.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top-level structure of one configuration file.
type File struct {
	Playback  *Playback      `hcl:"playback,block"`
	Markers   *Markers       `hcl:"markers,block"`
	Palette   *Palette       `hcl:"palette,block"`
	Server    *Server        `hcl:"server,block"`
	Renderers hcl.Expression `hcl:"renderers,optional"`
	Watch     hcl.Expression `hcl:"watch,optional"`
}

// Playback is the `playback` block.
type Playback struct {
	// StepDelay accepts a duration string ("250ms") or a number of
	// milliseconds.
	StepDelay    hcl.Expression `hcl:"step_delay,optional"`
	Autostart    hcl.Expression `hcl:"autostart,optional"`
	ExitWhenDone hcl.Expression `hcl:"exit_when_done,optional"`
}

// Markers is the `markers` block.
type Markers struct {
	InitialNodes  hcl.Expression `hcl:"initial_nodes,optional"`
	MessagePassed hcl.Expression `hcl:"message_passed,optional"`
}

// Palette is the `palette` block.
type Palette struct {
	InitiallyActive hcl.Expression `hcl:"initially_active,optional"`
	Inactive        hcl.Expression `hcl:"inactive,optional"`
	Source          hcl.Expression `hcl:"source,optional"`
	Target          hcl.Expression `hcl:"target,optional"`
}

// Server is the `server` block.
type Server struct {
	Port hcl.Expression `hcl:"port,optional"`
}
