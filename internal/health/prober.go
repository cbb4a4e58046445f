package health

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Nash0810/multiminio/internal/clock"
	"github.com/Nash0810/multiminio/internal/endpoint"
	"github.com/Nash0810/multiminio/internal/logging"
)

// LivePath is the liveness route exposed by every endpoint
const LivePath = "/minio/health/live"

// Prober issues one liveness probe. It never fails; every outcome is data.
type Prober interface {
	Probe(ctx context.Context, ep *endpoint.Endpoint) Status
}

// HTTPProber probes GET <endpoint>/minio/health/live
type HTTPProber struct {
	client *http.Client
	clock  clock.Clock
	logger *logging.Logger
}

// NewHTTPProber creates a prober whose requests time out after timeout
func NewHTTPProber(timeout time.Duration, clk clock.Clock, logger *logging.Logger) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
		},
		clock:  clk,
		logger: logger,
	}
}

// Probe performs the liveness request against ep
func (p *HTTPProber) Probe(ctx context.Context, ep *endpoint.Endpoint) Status {
	url := ep.URL + LivePath
	start := p.clock.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{Err: err, Latency: clock.Since(p.clock, start)}
	}

	resp, err := p.client.Do(req)
	elapsed := clock.Since(p.clock, start)
	if err != nil {
		return Status{Err: err, Latency: elapsed}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	p.logger.Warn("health_check_completed",
		"endpoint", ep.URL,
		"status", resp.StatusCode,
		"elapsed_seconds", elapsed.Seconds())

	return Status{StatusCode: resp.StatusCode, Latency: elapsed}
}
