package metrics

import (
	"net/http"
	"strconv"
)

// Middleware wraps the admin http.Handler to count requests
type Middleware struct {
	collector *Collector
	next      http.Handler
}

// NewMiddleware creates metrics middleware
func NewMiddleware(collector *Collector, next http.Handler) *Middleware {
	return &Middleware{
		collector: collector,
		next:      next,
	}
}

// ServeHTTP implements http.Handler interface
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	crw := &CaptureResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}

	m.next.ServeHTTP(crw, r)

	m.collector.AdminRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(crw.statusCode)).Inc()
}

// CaptureResponseWriter captures HTTP status code
type CaptureResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *CaptureResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}
