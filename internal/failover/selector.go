// Package failover implements ordered-fallback endpoint selection.
//
// The Selector serves every call from one current endpoint. When that
// endpoint fails, it scans a health snapshot in priority order and moves to
// the first healthy endpoint. While serving from a non-primary endpoint it
// re-validates its choice once per heartbeat so traffic returns to a
// recovered primary without needing another failure.
package failover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/endpoint"
	"github.com/Nash0810/multiminio/internal/health"
	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
)

// ErrAllEndpointsDown is returned when no endpoint became healthy within the fallback timeout
var ErrAllEndpointsDown = errors.New("all endpoints are down")

// SnapshotSource provides health snapshots, cached or fresh
type SnapshotSource interface {
	Get(ctx context.Context) health.Snapshot
	Taken() time.Time
	ExpiresIn() time.Duration
}

// Options holds the selector timing
type Options struct {
	FallbackTimeout time.Duration // Max length of a failure streak before giving up
	Heartbeat       time.Duration // Re-validation interval for a non-primary selection
}

// Selector tracks which endpoint serves calls
type Selector struct {
	endpoints *endpoint.Set
	health    SnapshotSource
	clock     clock.Clock
	opts      Options
	collector *metrics.Collector // Optional
	logger    *logging.Logger

	mux          sync.Mutex // Protects 'current', 'failingSince'
	current      int
	failingSince time.Time // Zero when not failing
}

// NewSelector creates a selector serving from the primary endpoint
func NewSelector(endpoints *endpoint.Set, source SnapshotSource, clk clock.Clock, opts Options,
	collector *metrics.Collector, logger *logging.Logger) *Selector {
	return &Selector{
		endpoints: endpoints,
		health:    source,
		clock:     clk,
		opts:      opts,
		collector: collector,
		logger:    logger,
	}
}

// Current returns the endpoint that should serve the next call. A
// non-primary selection older than the heartbeat is re-checked first.
func (s *Selector) Current(ctx context.Context) (*endpoint.Endpoint, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.current > 0 && s.heartbeatExpired() {
		s.logger.Info("heartbeat_recheck",
			"current", s.endpoints.Get(s.current).URL)
		return s.nextHealthyLocked(ctx, s.clock.Now())
	}
	return s.endpoints.Get(s.current), nil
}

// NextHealthy blocks until some endpoint is healthy and makes it current.
// It gives up with ErrAllEndpointsDown once the failure streak is longer
// than the fallback timeout.
func (s *Selector) NextHealthy(ctx context.Context) (*endpoint.Endpoint, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.nextHealthyLocked(ctx, s.clock.Now())
}

// Failed starts the failure streak at since unless one is already running
// and then searches for the next healthy endpoint.
func (s *Selector) Failed(ctx context.Context, since time.Time) (*endpoint.Endpoint, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.nextHealthyLocked(ctx, since)
}

// Succeeded ends the failure streak
func (s *Selector) Succeeded() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.failingSince = time.Time{}
}

// State returns a copy of the selector state
func (s *Selector) State() State {
	s.mux.Lock()
	defer s.mux.Unlock()
	return State{
		Current:      s.current,
		CurrentURL:   s.endpoints.Get(s.current).URL,
		FailingSince: s.failingSince,
	}
}

func (s *Selector) heartbeatExpired() bool {
	taken := s.health.Taken()
	if taken.IsZero() {
		return true
	}
	return s.clock.Now().Sub(taken) > s.opts.Heartbeat
}

// nextHealthyLocked runs with s.mux held. It opens a streak at since if none
// is running. The loop is bounded by wall-clock time, not attempts: between
// probe rounds it waits for the cached snapshot to expire, so it re-probes at
// most once per cache interval. A search abandoned by the caller's context
// closes the streak it opened; one that was already running is left as is.
func (s *Selector) nextHealthyLocked(ctx context.Context, since time.Time) (*endpoint.Endpoint, error) {
	opened := s.failingSince.IsZero()
	if opened {
		s.failingSince = since
	}
	abandon := func(err error) (*endpoint.Endpoint, error) {
		if opened {
			s.failingSince = time.Time{}
		}
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return abandon(err)
		}

		snap := s.health.Get(ctx)
		if i := snap.FirstHealthy(); i >= 0 {
			s.setCurrentLocked(i)
			return s.endpoints.Get(i), nil
		}

		down := s.clock.Now().Sub(s.failingSince)
		if down > s.opts.FallbackTimeout {
			s.logger.Error("all_endpoints_down",
				"endpoints", s.endpoints.Len(),
				"down_seconds", down.Seconds())
			return nil, fmt.Errorf("%w for %.3f seconds", ErrAllEndpointsDown, down.Seconds())
		}

		wait := s.health.ExpiresIn()
		// Land just past the fallback deadline rather than oversleeping it.
		if remaining := s.opts.FallbackTimeout - down + time.Millisecond; wait > remaining {
			wait = remaining
		}
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return abandon(ctx.Err())
		case <-s.clock.After(wait):
		}
	}
}

func (s *Selector) setCurrentLocked(i int) {
	if s.current != i {
		s.logger.Info("current_endpoint_changed",
			"from", s.endpoints.Get(s.current).URL,
			"to", s.endpoints.Get(i).URL)
	}
	s.current = i
	if s.collector != nil {
		s.collector.CurrentEndpoint.Set(float64(i))
	}
}
