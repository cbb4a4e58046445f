// Package multiminio puts several interchangeable object-storage endpoints
// behind one client.
//
// Every operation of MultiClient is routed to the current endpoint. A
// transport failure moves the client to the first healthy endpoint in
// priority order and retries there, until the call succeeds or the fallback
// timeout runs out. Errors that come back from a reachable server (missing
// objects, denied access, bad signatures) are returned as-is without
// failover.
//
//	primary, _ := minio.New("minio1:9000", opts)
//	secondary, _ := minio.New("minio2:9000", opts)
//	mc, err := multiminio.New(multiminio.DefaultConfig(primary, secondary))
//	if err != nil {
//		return err
//	}
//	info, err := mc.StatObject(ctx, "bucket", "key", minio.StatObjectOptions{})
package multiminio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/endpoint"
	"github.com/Nash0810/multiminio/internal/failover"
	"github.com/Nash0810/multiminio/internal/health"
	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/internal/storage"
)

// Client is the operation surface shared by the facade and each endpoint
type Client = storage.Client

// Snapshot is the per-endpoint result of the latest probe round
type Snapshot = health.Snapshot

// State is the selector bookkeeping exposed for diagnostics
type State = failover.State

// MultiClient is a fallback-aware Client over several endpoints
type MultiClient struct {
	cfg       Config
	endpoints *endpoint.Set
	cache     *health.Cache
	selector  *failover.Selector
	clock     clock.Clock
	logger    *logging.Logger
	collector *metrics.Collector
}

var _ Client = (*MultiClient)(nil)

// New creates the facade. The configuration is validated first; zero
// timings take their defaults.
func New(cfg Config) (*MultiClient, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoints, err := endpoint.NewSet(cfg.Clients)
	if err != nil {
		return nil, err
	}

	prober := cfg.Prober
	if prober == nil {
		prober = health.NewHTTPProber(cfg.HealthCheckTimeout, cfg.Clock, cfg.Logger)
	}

	cache := health.NewCache(endpoints, prober, cfg.Clock, cfg.HealthCheckMinInterval, cfg.Metrics)
	selector := failover.NewSelector(endpoints, cache, cfg.Clock, failover.Options{
		FallbackTimeout: cfg.FallbackTimeout,
		Heartbeat:       cfg.HealthCheckHeartbeat,
	}, cfg.Metrics, cfg.Logger)

	return &MultiClient{
		cfg:       cfg,
		endpoints: endpoints,
		cache:     cache,
		selector:  selector,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		collector: cfg.Metrics,
	}, nil
}

// Snapshot returns the cached health snapshot without probing. It is the
// zero Snapshot until the first failover or health check.
func (m *MultiClient) Snapshot() Snapshot {
	return m.cache.Last()
}

// CheckHealth returns the health snapshot, probing if the cached one is
// older than the minimum interval
func (m *MultiClient) CheckHealth(ctx context.Context) Snapshot {
	return m.cache.Get(ctx)
}

// State returns the current selector state
func (m *MultiClient) State() State {
	return m.selector.State()
}

// CurrentEndpoint returns the priority index and display URL of the
// endpoint serving calls
func (m *MultiClient) CurrentEndpoint() (int, string) {
	state := m.selector.State()
	return state.Current, state.CurrentURL
}

// Endpoints returns the display URLs in priority order
func (m *MultiClient) Endpoints() []string {
	all := m.endpoints.All()
	urls := make([]string, len(all))
	for i, ep := range all {
		urls[i] = ep.URL
	}
	return urls
}

// Reading summarizes the routing state for the metrics exporter
func (m *MultiClient) Reading() metrics.Reading {
	snap := m.Snapshot()
	state := m.State()

	r := metrics.Reading{Current: state.Current}
	if state.Failing() {
		r.Failing = m.clock.Now().Sub(state.FailingSince)
	}
	for i, url := range m.Endpoints() {
		up := false
		if i < len(snap.Statuses) {
			up = snap.Statuses[i].Healthy()
		}
		r.Endpoints = append(r.Endpoints, metrics.EndpointReading{URL: url, Up: up})
	}
	return r
}

// execute runs call against the current endpoint and fails over on
// transport errors until it succeeds or the fallback timeout elapses.
// rewind, when set, runs before every retry.
func execute[T any](ctx context.Context, m *MultiClient, operation string, rewind func() error,
	call func(c storage.Client) (T, error)) (T, error) {
	var zero T
	opID := uuid.NewString()
	start := m.clock.Now()

	ep, err := m.selector.Current(ctx)
	if err != nil {
		m.observe(operation, failureResult(ctx, err), start)
		return zero, err
	}

	for attempt := 0; m.clock.Now().Sub(start) < m.cfg.FallbackTimeout; attempt++ {
		if attempt > 0 && rewind != nil {
			if err := rewind(); err != nil {
				m.observe(operation, "not_replayable", start)
				return zero, err
			}
		}

		result, err := call(ep.Client)
		if err == nil {
			m.selector.Succeeded()
			m.observe(operation, "success", start)
			return result, nil
		}

		if storage.IsApplicationError(err) {
			m.observe(operation, "application_error", start)
			return zero, err
		}
		if storage.IsCanceled(ctx, err) {
			m.observe(operation, "canceled", start)
			return zero, err
		}

		m.logger.Error("operation_failed",
			"operation_id", opID,
			"operation", operation,
			"endpoint", ep.URL,
			"attempt", attempt+1,
			"error", err.Error())

		next, err := m.selector.Failed(ctx, start)
		if err != nil {
			m.observe(operation, failureResult(ctx, err), start)
			return zero, err
		}

		m.logger.Warn("failover_completed",
			"operation_id", opID,
			"operation", operation,
			"from", ep.URL,
			"to", next.URL)
		if m.collector != nil {
			m.collector.FailoversTotal.WithLabelValues(ep.URL, next.URL).Inc()
		}
		ep = next
	}

	m.observe(operation, "exhausted", start)
	return zero, fmt.Errorf("%w: %s failed on all endpoints within %.3f seconds",
		ErrRetryBudgetExhausted, operation, m.cfg.MaxTryTimeout.Seconds())
}

// failureResult labels a selector error for the operations metric
func failureResult(ctx context.Context, err error) string {
	if storage.IsCanceled(ctx, err) {
		return "canceled"
	}
	return "unavailable"
}

func (m *MultiClient) observe(operation, result string, start time.Time) {
	if m.collector == nil {
		return
	}
	m.collector.OperationsTotal.WithLabelValues(operation, result).Inc()
	m.collector.OperationDuration.WithLabelValues(operation).Observe(m.clock.Now().Sub(start).Seconds())
}
