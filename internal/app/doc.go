// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary run lifecycle, decoupled from
// any specific entrypoint like a CLI.
//
// A run loads the trace file into a local session, fans snapshots out to
// the selected renderers (plus the metrics recorder) and then keeps
// serving until the context is cancelled. Terminal-only runs, and runs with
// ExitWhenDone, finish as soon as playback reaches its last superstep.
package app
