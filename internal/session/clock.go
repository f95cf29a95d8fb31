package session

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock supplies time and delayed callbacks to the tracker.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock runs callbacks on their own goroutine via time.AfterFunc.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DispatchClock delivers timer callbacks through dispatch so they run on
// the host event loop instead of a timer goroutine.
type DispatchClock struct {
	Dispatch func(fire func())
}

// Now implements Clock.
func (DispatchClock) Now() time.Time { return time.Now() }

// AfterFunc implements Clock.
func (c DispatchClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		c.Dispatch(f)
	})
}
