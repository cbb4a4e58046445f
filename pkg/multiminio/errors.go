package multiminio

import (
	"errors"

	"github.com/Nash0810/multiminio/internal/failover"
)

var (
	// ErrNoEndpoints is returned by New without clients
	ErrNoEndpoints = errors.New("at least one endpoint client is required")

	// ErrUnsupportedLoadBalance is returned by New for anything but Fallback
	ErrUnsupportedLoadBalance = errors.New("unsupported load balance type")

	// ErrInvalidTiming is returned by New when the timing hierarchy is violated
	ErrInvalidTiming = errors.New("invalid timing configuration")

	// ErrAllEndpointsDown is returned when no endpoint recovered within the fallback timeout
	ErrAllEndpointsDown = failover.ErrAllEndpointsDown

	// ErrRetryBudgetExhausted is returned when an operation kept failing for the whole fallback timeout
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// ErrBodyNotReplayable is returned when an upload failed on one endpoint
	// and its reader cannot be rewound for the next
	ErrBodyNotReplayable = errors.New("request body cannot be replayed on another endpoint")
)

// IsUnavailable reports whether err is one of the terminal "service
// unavailable" errors
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrAllEndpointsDown) || errors.Is(err, ErrRetryBudgetExhausted)
}
