// Package clock abstracts deferred callbacks so timer-driven code can be
// tested against virtual time.
package clock

import "time"

// Timer is a handle to a pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once, after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
