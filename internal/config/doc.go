// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from files.
//
// The Model is built in three layers: Defaults, then any configuration
// files (via a Loader, such as the HCL implementation in internal/hcl),
// then command-line flags. Validate runs once on the merged result.
package config
