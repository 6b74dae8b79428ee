package app

import (
	"errors"
	"time"
)

// Config holds the command-line level configuration of an App. Zero or nil
// override fields leave the configuration file (or the defaults) in charge.
type Config struct {
	// TracePath is the trace log to play. Required unless FollowURL is set.
	TracePath string
	// FollowURL switches the app into follower mode: snapshots come from a
	// remote server instead of a local trace.
	FollowURL string
	// ConfigPaths are HCL files or directories.
	ConfigPaths []string

	LogFormat string
	LogLevel  string

	StepDelay    time.Duration
	Port         int
	Renderers    []string
	Autostart    *bool
	Watch        *bool
	ExitWhenDone *bool
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TracePath == "" && cfg.FollowURL == "" {
		return nil, errors.New("a trace path is required unless -follow is given")
	}
	if cfg.TracePath != "" && cfg.FollowURL != "" {
		return nil, errors.New("a trace path and -follow are mutually exclusive")
	}
	if cfg.StepDelay < 0 {
		return nil, errors.New("step delay must not be negative")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, errors.New("port must be within 0-65535")
	}
	return &cfg, nil
}
