package failover

import (
	"time"
)

// Phase is the logical selector state
type Phase int

const (
	// Stable means serving from the primary with no failure streak
	Stable Phase = iota

	// Degraded means serving from a fallback endpoint with no failure streak
	Degraded

	// AllDown means a failure streak is running
	AllDown
)

// String returns human-readable phase name
func (p Phase) String() string {
	switch p {
	case Stable:
		return "STABLE"
	case Degraded:
		return "DEGRADED"
	case AllDown:
		return "ALL_DOWN"
	default:
		return "UNKNOWN"
	}
}

// State is a point-in-time copy of the selector bookkeeping
type State struct {
	Current      int       // Priority index of the current endpoint
	CurrentURL   string    // Display URL of the current endpoint
	FailingSince time.Time // Start of the failure streak, zero when not failing
}

// Failing reports whether a failure streak is running
func (s State) Failing() bool {
	return !s.FailingSince.IsZero()
}

// Phase derives the logical state
func (s State) Phase() Phase {
	switch {
	case s.Failing():
		return AllDown
	case s.Current > 0:
		return Degraded
	default:
		return Stable
	}
}
