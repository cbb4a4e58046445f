package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCollectorRegistration tests that collectors can coexist on private registries
func TestCollectorRegistration(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()

	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.FailoversTotal.WithLabelValues("http://a", "http://b").Inc()
	c2.SnapshotRefreshes.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(c1.FailoversTotal.WithLabelValues("http://a", "http://b")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c1.SnapshotRefreshes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c2.SnapshotRefreshes))
}

// TestExporterExport tests gauge updates from a reading
func TestExporterExport(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	reading := Reading{
		Endpoints: []EndpointReading{
			{URL: "http://a:9000", Up: false},
			{URL: "http://b:9000", Up: true},
		},
		Current: 1,
		Failing: 1500 * time.Millisecond,
	}

	e := NewExporter(c, func() Reading { return reading }, time.Second)
	e.Export()

	assert.Equal(t, 0.0, testutil.ToFloat64(c.EndpointUp.WithLabelValues("http://a:9000")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EndpointUp.WithLabelValues("http://b:9000")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CurrentEndpoint))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.FailingSeconds))
}

// TestExporterDropsRemovedEndpoints tests that a reading without an endpoint
// removes its endpoint_up series
func TestExporterDropsRemovedEndpoints(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	reading := Reading{Endpoints: []EndpointReading{
		{URL: "http://a:9000", Up: true},
		{URL: "http://b:9000", Up: true},
	}}
	e := NewExporter(c, func() Reading { return reading }, time.Second)

	e.Export()
	assert.Equal(t, 2, testutil.CollectAndCount(c.EndpointUp))

	reading = Reading{Endpoints: []EndpointReading{{URL: "http://c:9000", Up: false}}}
	e.Export()
	assert.Equal(t, 1, testutil.CollectAndCount(c.EndpointUp))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.EndpointUp.WithLabelValues("http://c:9000")))
}

// TestExporterStartStops tests the loop exports immediately and exits on cancel
func TestExporterStartStops(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	reads := make(chan struct{}, 16)
	e := NewExporter(c, func() Reading {
		select {
		case reads <- struct{}{}:
		default:
		}
		return Reading{Current: 2}
	}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Start(ctx)
		close(done)
	}()

	select {
	case <-reads:
	case <-time.After(2 * time.Second):
		t.Fatal("exporter did not export on start")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("exporter did not stop")
	}
	require.Equal(t, 2.0, testutil.ToFloat64(c.CurrentEndpoint))
}

// TestMiddlewareCountsStatus tests admin request counting
func TestMiddlewareCountsStatus(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	h := NewMiddleware(c, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/healthz", "/healthz", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.AdminRequestsTotal.WithLabelValues("/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AdminRequestsTotal.WithLabelValues("/missing", "404")))
}
