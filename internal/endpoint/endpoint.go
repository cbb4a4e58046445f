package endpoint

import (
	"sync"
	"time"

	"github.com/Nash0810/multiminio/internal/storage"
)

// Endpoint is one backing storage client the facade can route calls to
type Endpoint struct {
	Index  int            // Priority position, 0 is the primary
	URL    string         // Display URL (scheme://host)
	Client storage.Client // Underlying client

	state   HealthState
	metrics ProbeMetrics
	mux     sync.RWMutex // Protects 'state', 'metrics'
}

// New creates an endpoint at priority position index
func New(index int, client storage.Client) *Endpoint {
	return &Endpoint{
		Index:  index,
		URL:    storage.DisplayURL(client),
		Client: client,
		state:  Unknown,
	}
}

// GetState returns the last observed health state (thread-safe)
func (e *Endpoint) GetState() HealthState {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.state
}

// RecordProbeSuccess records a probe that answered with the success code
func (e *Endpoint) RecordProbeSuccess(at time.Time, latency time.Duration) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.state = Up
	e.metrics.ConsecutiveSuccesses++
	e.metrics.ConsecutiveFailures = 0
	e.metrics.LastCheck = at
	e.metrics.LastSuccess = at
	e.metrics.LastLatency = latency
}

// RecordProbeFailure records a failed probe
func (e *Endpoint) RecordProbeFailure(at time.Time, latency time.Duration) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.state = Down
	e.metrics.ConsecutiveFailures++
	e.metrics.ConsecutiveSuccesses = 0
	e.metrics.LastCheck = at
	e.metrics.LastFailure = at
	e.metrics.LastLatency = latency
}

// GetProbeMetrics returns a copy of probe metrics (thread-safe)
func (e *Endpoint) GetProbeMetrics() ProbeMetrics {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.metrics
}
