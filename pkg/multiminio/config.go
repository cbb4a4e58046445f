package multiminio

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/health"
	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/internal/storage"
)

// LoadBalanceType selects how calls are spread over endpoints
type LoadBalanceType string

const (
	// Fallback serves from the first healthy endpoint in priority order
	Fallback LoadBalanceType = "fallback"

	// RoundRobin is declared but not implemented
	RoundRobin LoadBalanceType = "round_robin"

	// Random is declared but not implemented
	Random LoadBalanceType = "random"
)

// ParseLoadBalanceType maps a configuration string to a LoadBalanceType
func ParseLoadBalanceType(s string) (LoadBalanceType, error) {
	switch lb := LoadBalanceType(strings.ToLower(strings.TrimSpace(s))); lb {
	case "":
		return Fallback, nil
	case Fallback, RoundRobin, Random:
		return lb, nil
	default:
		return "", fmt.Errorf("%w: unknown load balance type %q", ErrUnsupportedLoadBalance, s)
	}
}

// Defaults
const (
	DefaultFallbackTimeout        = 60 * time.Second
	DefaultHealthCheckTimeout     = 5 * time.Second
	DefaultHealthCheckHeartbeat   = 300 * time.Second
	DefaultMaxTryTimeout          = 60 * time.Second
	DefaultHealthCheckMinInterval = 10 * time.Second
)

// Config holds the facade construction parameters
type Config struct {
	Clients     []storage.Client // Endpoints in priority order
	LoadBalance LoadBalanceType  // Only Fallback is accepted

	FallbackTimeout        time.Duration // Max total time an operation may spend failing over
	HealthCheckTimeout     time.Duration // Per-probe timeout
	HealthCheckHeartbeat   time.Duration // Re-validation interval for a non-primary selection
	MaxTryTimeout          time.Duration // Reported in the retry-budget error only
	HealthCheckMinInterval time.Duration // Minimum spacing between probe rounds

	// Optional collaborators
	Clock   clock.Clock        // Defaults to the process clock
	Prober  health.Prober      // Defaults to an HTTP liveness prober
	Logger  *logging.Logger    // Defaults to a no-op logger
	Metrics *metrics.Collector // Nil disables metrics
}

// DefaultConfig returns a configuration with default timings for clients
func DefaultConfig(clients ...storage.Client) Config {
	return Config{
		Clients:                clients,
		LoadBalance:            Fallback,
		FallbackTimeout:        DefaultFallbackTimeout,
		HealthCheckTimeout:     DefaultHealthCheckTimeout,
		HealthCheckHeartbeat:   DefaultHealthCheckHeartbeat,
		MaxTryTimeout:          DefaultMaxTryTimeout,
		HealthCheckMinInterval: DefaultHealthCheckMinInterval,
	}
}

// withDefaults fills zero-valued fields
func (c Config) withDefaults() Config {
	if c.LoadBalance == "" {
		c.LoadBalance = Fallback
	}
	if c.FallbackTimeout == 0 {
		c.FallbackTimeout = DefaultFallbackTimeout
	}
	if c.HealthCheckTimeout == 0 {
		c.HealthCheckTimeout = DefaultHealthCheckTimeout
	}
	if c.HealthCheckHeartbeat == 0 {
		c.HealthCheckHeartbeat = DefaultHealthCheckHeartbeat
	}
	if c.MaxTryTimeout == 0 {
		c.MaxTryTimeout = DefaultMaxTryTimeout
	}
	if c.HealthCheckMinInterval == 0 {
		c.HealthCheckMinInterval = DefaultHealthCheckMinInterval
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	return c
}

// Validate checks the configuration. The timing hierarchy
// heartbeat ≥ 2×min interval ≥ 4×probe timeout keeps probe rounds from
// overlapping and the cache from outliving a heartbeat.
func (c Config) Validate() error {
	if len(c.Clients) == 0 {
		return ErrNoEndpoints
	}

	switch c.LoadBalance {
	case Fallback, "":
	case RoundRobin, Random:
		return fmt.Errorf("%w: %s is not implemented, only %s is supported", ErrUnsupportedLoadBalance, c.LoadBalance, Fallback)
	default:
		return fmt.Errorf("%w: unknown load balance type %q", ErrUnsupportedLoadBalance, c.LoadBalance)
	}

	timings := []struct {
		name  string
		value time.Duration
	}{
		{"fallback_timeout", c.FallbackTimeout},
		{"health_check_timeout", c.HealthCheckTimeout},
		{"health_check_heartbeat", c.HealthCheckHeartbeat},
		{"max_try_timeout", c.MaxTryTimeout},
		{"health_check_min_interval", c.HealthCheckMinInterval},
	}
	for _, t := range timings {
		if t.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidTiming, t.name, t.value)
		}
	}

	if c.HealthCheckHeartbeat < 2*c.HealthCheckMinInterval {
		return fmt.Errorf("%w: health_check_heartbeat (%s) must be at least twice health_check_min_interval (%s)",
			ErrInvalidTiming, c.HealthCheckHeartbeat, c.HealthCheckMinInterval)
	}
	if c.HealthCheckMinInterval < 2*c.HealthCheckTimeout {
		return fmt.Errorf("%w: health_check_min_interval (%s) must be at least twice health_check_timeout (%s)",
			ErrInvalidTiming, c.HealthCheckMinInterval, c.HealthCheckTimeout)
	}
	return nil
}
