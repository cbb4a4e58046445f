package metrics

import (
	"context"
	"time"
)

// EndpointReading is the exported view of one endpoint
type EndpointReading struct {
	URL string
	Up  bool
}

// Reading is a point-in-time view of the facade's routing state
type Reading struct {
	Endpoints []EndpointReading
	Current   int
	Failing   time.Duration
}

// Exporter periodically updates gauges from the routing state
type Exporter struct {
	collector *Collector
	read      func() Reading
	interval  time.Duration
}

// NewExporter creates a new metrics exporter
func NewExporter(collector *Collector, read func() Reading, interval time.Duration) *Exporter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Exporter{
		collector: collector,
		read:      read,
		interval:  interval,
	}
}

// Start begins the metrics export loop
func (e *Exporter) Start(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Export()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Export()
		}
	}
}

// Export updates all gauge metrics once
func (e *Exporter) Export() {
	r := e.read()

	// Endpoints can disappear on reload; drop series for URLs no longer read
	e.collector.EndpointUp.Reset()
	for _, ep := range r.Endpoints {
		up := 0.0
		if ep.Up {
			up = 1
		}
		e.collector.EndpointUp.WithLabelValues(ep.URL).Set(up)
	}

	e.collector.CurrentEndpoint.Set(float64(r.Current))
	e.collector.FailingSeconds.Set(r.Failing.Seconds())
}
