package clock

import (
	"sync"
	"time"
)

// Clock is the time source used for every interval and timeout computation
type Clock interface {
	// Now returns the current instant. Successive calls never go backwards.
	Now() time.Time

	// After waits for the duration to elapse and then sends the current time
	After(d time.Duration) <-chan time.Time
}

// Real is the process clock. time.Now carries a monotonic reading, so
// subtraction between two instants is not affected by wall-clock steps.
type Real struct{}

// New returns the process clock
func New() Real {
	return Real{}
}

// Now returns time.Now()
func (Real) Now() time.Time {
	return time.Now()
}

// After delegates to time.After
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Mock is a manually driven clock for deterministic tests.
// After advances the mock by the requested duration and fires immediately,
// so code that waits on the clock never blocks a test.
type Mock struct {
	now time.Time
	mux sync.Mutex
}

// NewMock creates a mock clock positioned at start
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now returns the mock's current instant
func (m *Mock) Now() time.Time {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.now
}

// Add moves the mock forward. Negative durations are ignored.
func (m *Mock) Add(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.now = m.now.Add(d)
}

// After advances the mock by d and returns an already fired channel
func (m *Mock) After(d time.Duration) <-chan time.Time {
	m.Add(d)
	ch := make(chan time.Time, 1)
	ch <- m.Now()
	return ch
}

// Since returns the time elapsed since t on clock c
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
