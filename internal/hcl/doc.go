// Package hcl provides the HCL implementation of config.Loader.
//
// Files are parsed with hclparse, decoded into the schema package's
// expression-valued structs with gohcl, and each attribute is evaluated
// against an evaluation context that exposes environment variables as
// `env.NAME` and a small set of string and numeric functions. Files are
// applied in order; a later file overrides attributes an earlier file set.
package hcl
