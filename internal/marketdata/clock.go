package marketdata

import "time"

// Clock abstracts time so the spacing wait, TTL checks, and retry timers can
// run against a fake clock in tests instead of wall-clock waits.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable timer handle. Stop reports whether the timer was
// still pending.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// SystemClock returns the wall-clock implementation used outside tests.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{time.NewTimer(d)}
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{time.AfterFunc(d, f)}
}

type systemTimer struct {
	t *time.Timer
}

func (t systemTimer) C() <-chan time.Time {
	return t.t.C
}

func (t systemTimer) Stop() bool {
	return t.t.Stop()
}
