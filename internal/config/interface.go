package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given files or directories and
	// applies it on top of base. Paths that do not exist are skipped.
	Load(ctx context.Context, base *Model, paths ...string) (*Model, error)
}
