package testutil

import (
	"sync"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
)

// FakeClock is a deterministic marketdata.Clock for tests. Time moves only
// through Advance, which fires due timers in deadline order. AfterFunc
// callbacks run in their own goroutine, matching time.AfterFunc, so tests
// synchronize on observable effects rather than on Advance returning.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFakeClock creates a clock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTimer arms a channel timer d from now.
func (c *FakeClock) NewTimer(d time.Duration) marketdata.Timer {
	return c.addTimer(d, nil)
}

// AfterFunc arms a callback timer d from now.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) marketdata.Timer {
	return c.addTimer(d, f)
}

func (c *FakeClock) addTimer(d time.Duration, f func()) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		ch:       make(chan time.Time, 1),
		fn:       f,
	}
	if d <= 0 {
		t.fired = true
		t.ch <- t.deadline
		if f != nil {
			go f()
		}
		return t
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// passes, earliest first. Timers armed by fired callbacks after Advance
// returns wait for the next Advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		next.fired = true
		next.ch <- c.now
		if next.fn != nil {
			go next.fn()
		}
	}
	c.now = target
}

// PendingTimers counts armed, unfired, unstopped timers. Tests poll this to
// know a goroutine under test has reached its wait before advancing.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	ch       chan time.Time
	fn       func()
	fired    bool
	stopped  bool
}

func (t *fakeTimer) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
