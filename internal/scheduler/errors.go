package scheduler

import "fmt"

// InvalidTransitionError is returned when an operation is not allowed in
// the scheduler's current state. The state is left unchanged.
type InvalidTransitionError struct {
	Op    string
	State State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("scheduler: cannot %s while %s", e.Op, e.State)
}
