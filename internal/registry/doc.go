// Package registry provides the central "glue" for the renderer module
// system.
//
// Each package under modules/ implements Module and registers one or more
// named renderer factories. The CLI and the configuration file select
// renderers by name; the app asks the registry to build them against a
// shared set of dependencies (the session controller, the HTTP mux and
// the terminal writer) and fans snapshots out to all of them.
package registry
