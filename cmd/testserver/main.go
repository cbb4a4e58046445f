// Command testserver is a stand-in storage endpoint for failover drills.
// It answers the liveness route and can be switched down and up at runtime:
//
//	testserver 9001 &
//	curl -X POST localhost:9001/admin/down
package main

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/Nash0810/multiminio/internal/health"
	"github.com/Nash0810/multiminio/internal/logging"
)

// newHandler returns the endpoint routes; up toggles the liveness answer
func newHandler(port string, up *atomic.Bool, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(health.LivePath, func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/admin/down", func(w http.ResponseWriter, r *http.Request) {
		up.Store(false)
		logger.Warn("endpoint_marked_down", "port", port)
		fmt.Fprintf(w, `{"up":false,"port":%s}`, port)
	})

	mux.HandleFunc("/admin/up", func(w http.ResponseWriter, r *http.Request) {
		up.Store(true)
		logger.Info("endpoint_marked_up", "port", port)
		fmt.Fprintf(w, `{"up":true,"port":%s}`, port)
	})

	mux.HandleFunc("/delay", func(w http.ResponseWriter, r *http.Request) {
		// Slower than the default probe timeout
		time.Sleep(6 * time.Second)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "port", port, "method", r.Method, "uri", r.RequestURI)
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotImplemented)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NotImplemented</Code></Error>`)
	})

	return mux
}

func main() {
	port := "9001"
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	logger := logging.NewLogger("testserver")
	defer logger.Sync()

	var up atomic.Bool
	up.Store(true)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           newHandler(port, &up, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("test_server_listening", "port", port)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}
