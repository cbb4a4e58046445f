package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/endpoint"
	"github.com/Nash0810/multiminio/internal/metrics"
)

// MaxConcurrentProbes caps the probe fan-out regardless of endpoint count
const MaxConcurrentProbes = 32

// Cache memoizes the endpoint snapshot for at least minInterval so probe
// frequency stays bounded no matter how many calls need it.
type Cache struct {
	endpoints   *endpoint.Set
	prober      Prober
	clock       clock.Clock
	minInterval time.Duration
	collector   *metrics.Collector // Optional

	mux      sync.Mutex // Held across a refresh so concurrent callers share one probe round
	snapshot Snapshot
}

// NewCache creates a cache over endpoints
func NewCache(endpoints *endpoint.Set, prober Prober, clk clock.Clock, minInterval time.Duration, collector *metrics.Collector) *Cache {
	return &Cache{
		endpoints:   endpoints,
		prober:      prober,
		clock:       clk,
		minInterval: minInterval,
		collector:   collector,
	}
}

// Get returns the cached snapshot while it is younger than the minimum
// interval, otherwise probes every endpoint and replaces it.
func (c *Cache) Get(ctx context.Context) Snapshot {
	c.mux.Lock()
	defer c.mux.Unlock()

	if !c.snapshot.IsZero() && c.snapshot.Age(c.clock.Now()) < c.minInterval {
		return c.snapshot
	}

	statuses := c.probeAll(ctx)
	c.snapshot = Snapshot{Statuses: statuses, Taken: c.clock.Now()}
	if c.collector != nil {
		c.collector.SnapshotRefreshes.Inc()
	}
	return c.snapshot
}

// Last returns a copy of the most recent snapshot without probing.
// The zero Snapshot is returned before the first probe round.
func (c *Cache) Last() Snapshot {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.snapshot.clone()
}

// Taken returns when the current snapshot was taken (zero if never)
func (c *Cache) Taken() time.Time {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.snapshot.Taken
}

// ExpiresIn returns how long the current snapshot will still be served
func (c *Cache) ExpiresIn() time.Duration {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.snapshot.IsZero() {
		return 0
	}
	left := c.minInterval - c.snapshot.Age(c.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// probeAll probes concurrently; results land at their endpoint's index so
// the snapshot order never depends on completion order. The round is shared
// by every caller, so it runs detached from the caller's cancellation and is
// bounded by the per-probe timeout instead.
func (c *Cache) probeAll(ctx context.Context) []Status {
	ctx = context.WithoutCancel(ctx)
	endpoints := c.endpoints.All()
	statuses := make([]Status, len(endpoints))

	var g errgroup.Group
	g.SetLimit(min(len(endpoints), MaxConcurrentProbes))
	for i, ep := range endpoints {
		g.Go(func() error {
			statuses[i] = c.probe(ctx, ep)
			return nil
		})
	}
	g.Wait()

	return statuses
}

func (c *Cache) probe(ctx context.Context, ep *endpoint.Endpoint) Status {
	st := c.prober.Probe(ctx, ep)
	at := c.clock.Now()

	result := "success"
	if st.Healthy() {
		ep.RecordProbeSuccess(at, st.Latency)
	} else {
		ep.RecordProbeFailure(at, st.Latency)
		result = "failure"
	}

	if c.collector != nil {
		c.collector.HealthCheckTotal.WithLabelValues(ep.URL, result).Inc()
		c.collector.HealthCheckDuration.WithLabelValues(ep.URL).Observe(st.Latency.Seconds())
	}
	return st
}
