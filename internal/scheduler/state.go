package scheduler

import "fmt"

// State is the scheduler's lifecycle state.
type State int

const (
	// Idle means no run is in progress. Display state may be partially
	// revealed after a Stop.
	Idle State = iota
	// Running means an advance is pending.
	Running
	// Done means the last superstep has been applied.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	State State
	// NextStep is the superstep the next advance will apply.
	NextStep int
	// LastApplied is the most recently applied superstep, -1 if none since
	// the last reset.
	LastApplied int
	// MaxSuperstep is the highest superstep of the trace, -1 if empty.
	MaxSuperstep int
}
