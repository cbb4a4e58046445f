package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/endpoint"
	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/internal/storage"
	"github.com/Nash0810/multiminio/internal/storage/storagetest"
)

// scriptedProber answers from a fixed table and counts probes
type scriptedProber struct {
	mux     sync.Mutex
	answers map[string]Status
	probes  int
}

func (p *scriptedProber) Probe(ctx context.Context, ep *endpoint.Endpoint) Status {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.probes++
	return p.answers[ep.URL]
}

func (p *scriptedProber) set(url string, st Status) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.answers[url] = st
}

func (p *scriptedProber) count() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.probes
}

func newSet(t *testing.T, urls ...string) *endpoint.Set {
	t.Helper()
	clients := make([]storage.Client, len(urls))
	for i, u := range urls {
		clients[i] = storagetest.New(u)
	}
	s, err := endpoint.NewSet(clients)
	require.NoError(t, err)
	return s
}

var errRefused = errors.New("connection refused")

// TestStatusHealthy tests that only a 200 answer counts as healthy
func TestStatusHealthy(t *testing.T) {
	assert.True(t, Status{StatusCode: 200}.Healthy())
	assert.False(t, Status{StatusCode: 503}.Healthy())
	assert.False(t, Status{Err: errRefused}.Healthy())
	assert.False(t, Status{}.Healthy())
}

// TestSnapshotFirstHealthy tests priority-order selection
func TestSnapshotFirstHealthy(t *testing.T) {
	snap := Snapshot{Statuses: []Status{{Err: errRefused}, {StatusCode: 503}, {StatusCode: 200}, {StatusCode: 200}}}
	assert.Equal(t, 2, snap.FirstHealthy())
	assert.Equal(t, 2, snap.Healthy())

	down := Snapshot{Statuses: []Status{{Err: errRefused}, {StatusCode: 500}}}
	assert.Equal(t, -1, down.FirstHealthy())
}

// TestHTTPProber tests probe outcomes against live servers
func TestHTTPProber(t *testing.T) {
	var path atomic.Value
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	unavailable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unavailable.Close()

	block := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(block)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	prober := NewHTTPProber(200*time.Millisecond, clock.New(), logging.NewWithCore("health", core))
	set := newSet(t, ok.URL, unavailable.URL, slow.URL, closedURL)
	ctx := context.Background()

	st := prober.Probe(ctx, set.Get(0))
	assert.True(t, st.Healthy())
	assert.Equal(t, LivePath, path.Load())
	assert.Greater(t, st.Latency, time.Duration(0))

	st = prober.Probe(ctx, set.Get(1))
	assert.NoError(t, st.Err)
	assert.Equal(t, http.StatusServiceUnavailable, st.StatusCode)
	assert.False(t, st.Healthy())

	st = prober.Probe(ctx, set.Get(2))
	assert.Error(t, st.Err, "probe must time out")
	assert.GreaterOrEqual(t, st.Latency, 200*time.Millisecond)

	st = prober.Probe(ctx, set.Get(3))
	assert.Error(t, st.Err)

	assert.Equal(t, 2, logs.FilterMessage("health_check_completed").Len())
}

// ctxProber fails every probe whose context is already done
type ctxProber struct{}

func (ctxProber) Probe(ctx context.Context, ep *endpoint.Endpoint) Status {
	if err := ctx.Err(); err != nil {
		return Status{Err: err}
	}
	return Status{StatusCode: http.StatusOK}
}

// TestCacheIgnoresCallerCancellation tests that a canceled caller cannot
// poison the shared snapshot
func TestCacheIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set := newSet(t, "http://a:9000", "http://b:9000")
	cache := NewCache(set, ctxProber{}, clock.NewMock(time.Unix(0, 0)), 10*time.Second, nil)
	snap := cache.Get(ctx)
	assert.Equal(t, 2, snap.Healthy())
	assert.Equal(t, 0, cache.Last().FirstHealthy())

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	set = newSet(t, live.URL)
	prober := NewHTTPProber(time.Second, clock.New(), logging.NewNop())
	cache = NewCache(set, prober, clock.New(), 10*time.Second, nil)
	snap = cache.Get(ctx)
	require.Len(t, snap.Statuses, 1)
	assert.NoError(t, snap.Statuses[0].Err)
	assert.True(t, snap.Statuses[0].Healthy())
}

// TestCacheHitWithinInterval tests that refreshes are rate limited
func TestCacheHitWithinInterval(t *testing.T) {
	set := newSet(t, "http://a:9000", "http://b:9000")
	prober := &scriptedProber{answers: map[string]Status{
		"http://a:9000": {Err: errRefused},
		"http://b:9000": {StatusCode: 200},
	}}
	clk := clock.NewMock(time.Unix(1000, 0))
	c := NewCache(set, prober, clk, 10*time.Second, nil)
	ctx := context.Background()

	first := c.Get(ctx)
	require.Equal(t, 2, prober.count())
	assert.Equal(t, 1, first.FirstHealthy())

	clk.Add(9 * time.Second)
	prober.set("http://a:9000", Status{StatusCode: 200})
	second := c.Get(ctx)
	assert.Equal(t, 2, prober.count(), "second call within interval must hit the cache")
	assert.Equal(t, first.Taken, second.Taken)
	assert.Equal(t, 1, second.FirstHealthy())

	clk.Add(time.Second)
	third := c.Get(ctx)
	assert.Equal(t, 4, prober.count(), "call after interval must re-probe")
	assert.Equal(t, 0, third.FirstHealthy())
	assert.Equal(t, clk.Now(), third.Taken)
}

// TestCacheSnapshotAlignment tests that result order follows endpoint order
func TestCacheSnapshotAlignment(t *testing.T) {
	urls := make([]string, 0, 40)
	answers := make(map[string]Status)
	for i := 0; i < 40; i++ {
		u := "http://node" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + ":9000"
		urls = append(urls, u)
		answers[u] = Status{StatusCode: 200 + i}
	}
	set := newSet(t, urls...)
	c := NewCache(set, &scriptedProber{answers: answers}, clock.NewMock(time.Unix(1, 0)), time.Second, nil)

	snap := c.Get(context.Background())
	require.Len(t, snap.Statuses, 40)
	for i, st := range snap.Statuses {
		assert.Equal(t, 200+i, st.StatusCode)
	}
	assert.Equal(t, 0, snap.FirstHealthy())
}

// boundedProber records peak concurrency
type boundedProber struct {
	active int64
	peak   int64
}

func (p *boundedProber) Probe(ctx context.Context, ep *endpoint.Endpoint) Status {
	n := atomic.AddInt64(&p.active, 1)
	for {
		peak := atomic.LoadInt64(&p.peak)
		if n <= peak || atomic.CompareAndSwapInt64(&p.peak, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt64(&p.active, -1)
	return Status{StatusCode: 200}
}

// TestCacheBoundedFanOut tests the probe concurrency cap
func TestCacheBoundedFanOut(t *testing.T) {
	urls := make([]string, 100)
	for i := range urls {
		urls[i] = "http://10.0.0." + string(rune('0'+i/10)) + string(rune('0'+i%10)) + ":9000"
	}
	prober := &boundedProber{}
	c := NewCache(newSet(t, urls...), prober, clock.New(), time.Minute, nil)

	snap := c.Get(context.Background())
	assert.Len(t, snap.Statuses, 100)
	assert.LessOrEqual(t, atomic.LoadInt64(&prober.peak), int64(MaxConcurrentProbes))
}

// TestCacheBookkeeping tests endpoint and metric updates after a probe round
func TestCacheBookkeeping(t *testing.T) {
	set := newSet(t, "http://a:9000", "http://b:9000")
	prober := &scriptedProber{answers: map[string]Status{
		"http://a:9000": {Err: errRefused, Latency: time.Second},
		"http://b:9000": {StatusCode: 200, Latency: 10 * time.Millisecond},
	}}
	collector := metrics.NewCollector(prometheus.NewRegistry())
	clk := clock.NewMock(time.Unix(50, 0))
	c := NewCache(set, prober, clk, 10*time.Second, collector)

	assert.True(t, c.Last().IsZero())
	assert.Equal(t, time.Duration(0), c.ExpiresIn())

	c.Get(context.Background())

	assert.Equal(t, endpoint.Down, set.Get(0).GetState())
	assert.Equal(t, endpoint.Up, set.Get(1).GetState())
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SnapshotRefreshes))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HealthCheckTotal.WithLabelValues("http://a:9000", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HealthCheckTotal.WithLabelValues("http://b:9000", "success")))

	clk.Add(4 * time.Second)
	assert.Equal(t, 6*time.Second, c.ExpiresIn())
	assert.Equal(t, time.Unix(50, 0), c.Taken())

	last := c.Last()
	last.Statuses[0] = Status{StatusCode: 200}
	assert.False(t, c.Last().Statuses[0].Healthy(), "Last must return a copy")
}
