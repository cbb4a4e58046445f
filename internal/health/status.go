package health

import (
	"fmt"
	"net/http"
	"time"
)

// HealthyStatusCode is the only liveness answer that counts as healthy
const HealthyStatusCode = http.StatusOK

// Status is the outcome of one liveness probe. Exactly one of StatusCode
// (any HTTP answer) or Err (transport failure) is meaningful.
type Status struct {
	StatusCode int
	Err        error
	Latency    time.Duration // Round trip, zero when not measured
}

// Healthy reports whether the probe answered with the success code
func (s Status) Healthy() bool {
	return s.Err == nil && s.StatusCode == HealthyStatusCode
}

func (s Status) String() string {
	if s.Err != nil {
		return fmt.Sprintf("error(%v) in %s", s.Err, s.Latency)
	}
	return fmt.Sprintf("%d in %s", s.StatusCode, s.Latency)
}

// Snapshot holds one Status per endpoint, aligned by priority index.
// A snapshot is replaced wholesale on refresh and never mutated.
type Snapshot struct {
	Statuses []Status
	Taken    time.Time
}

// IsZero reports whether no probe round has completed yet
func (s Snapshot) IsZero() bool {
	return s.Taken.IsZero()
}

// FirstHealthy returns the index of the highest-priority healthy endpoint, or -1
func (s Snapshot) FirstHealthy() int {
	for i, st := range s.Statuses {
		if st.Healthy() {
			return i
		}
	}
	return -1
}

// Healthy returns the number of healthy endpoints
func (s Snapshot) Healthy() int {
	n := 0
	for _, st := range s.Statuses {
		if st.Healthy() {
			n++
		}
	}
	return n
}

// Age returns how old the snapshot is at now
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Taken)
}

func (s Snapshot) clone() Snapshot {
	statuses := make([]Status, len(s.Statuses))
	copy(statuses, s.Statuses)
	return Snapshot{Statuses: statuses, Taken: s.Taken}
}
