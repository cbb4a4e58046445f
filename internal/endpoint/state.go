package endpoint

import (
	"time"
)

// HealthState is the last observed liveness of an endpoint
type HealthState int

const (
	// Unknown means the endpoint has not been probed yet
	Unknown HealthState = iota

	// Up means the last probe answered with the success code
	Up

	// Down means the last probe failed or answered with another code
	Down
)

// String returns human-readable state name
func (hs HealthState) String() string {
	switch hs {
	case Unknown:
		return "UNKNOWN"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	default:
		return "INVALID"
	}
}

// ProbeMetrics tracks liveness probe statistics
type ProbeMetrics struct {
	ConsecutiveSuccesses int       // Consecutive successful probes
	ConsecutiveFailures  int       // Consecutive failed probes
	LastCheck            time.Time // Time of last probe
	LastSuccess          time.Time // Time of last successful probe
	LastFailure          time.Time // Time of last failed probe
	LastLatency          time.Duration
}
