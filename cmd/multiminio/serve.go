package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Nash0810/multiminio/internal/config"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/pkg/multiminio"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin server with /metrics and /healthz",
		Long: "Serve builds the fallback client from the config file, exposes its routing " +
			"state on /metrics and /healthz and rebuilds it whenever the file changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd)
		},
	}
	cmd.Flags().String("addr", "", "admin listen address (overrides admin_addr)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, err := a.logger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("starting_admin_server")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	mc, err := newFacade(cfg, logger, collector)
	if err != nil {
		return err
	}
	var current atomic.Pointer[multiminio.MultiClient]
	current.Store(mc)
	logger.Info("endpoints_configured", "endpoints", mc.Endpoints())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	interval := config.Seconds(cfg.MetricsInterval)
	exporter := metrics.NewExporter(collector, func() metrics.Reading {
		return current.Load().Reading()
	}, interval)
	go exporter.Start(ctx)

	// Endpoints of one facade are fixed, so a reload swaps in a new facade
	configWatcher, err := config.NewWatcher(a.configPath(), logger, func(newCfg *config.Config) error {
		logger.Info("applying_config_reload")
		next, err := newFacade(newCfg, logger, collector)
		if err != nil {
			return err
		}
		current.Store(next)
		logger.Info("endpoints_reloaded", "endpoints", next.Endpoints())
		return nil
	})
	if err != nil {
		logger.Error("failed_to_create_config_watcher", "error", err.Error())
	} else {
		go configWatcher.Start(ctx)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.AdminAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           newAdminHandler(&current, reg, collector),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server_starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("shutdown_signal_received")
	case <-ctx.Done():
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err.Error())
	}

	cancel()
	logger.Info("shutdown_complete")
	return nil
}

type endpointHealth struct {
	URL            string  `json:"url"`
	Healthy        bool    `json:"healthy"`
	StatusCode     int     `json:"status_code,omitempty"`
	Error          string  `json:"error,omitempty"`
	LatencySeconds float64 `json:"latency_seconds"`
}

type healthResponse struct {
	Status    string           `json:"status"`
	Phase     string           `json:"phase"`
	Current   string           `json:"current"`
	Endpoints []endpointHealth `json:"endpoints"`
}

// newAdminHandler serves /metrics from reg and /healthz from the current facade
func newAdminHandler(current *atomic.Pointer[multiminio.MultiClient], reg *prometheus.Registry,
	collector *metrics.Collector) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		mc := current.Load()
		snap := mc.CheckHealth(r.Context())
		state := mc.State()

		resp := healthResponse{
			Status:  "ok",
			Phase:   state.Phase().String(),
			Current: state.CurrentURL,
		}
		for i, url := range mc.Endpoints() {
			st := snap.Statuses[i]
			eh := endpointHealth{
				URL:            url,
				Healthy:        st.Healthy(),
				StatusCode:     st.StatusCode,
				LatencySeconds: st.Latency.Seconds(),
			}
			if st.Err != nil {
				eh.Error = st.Err.Error()
			}
			resp.Endpoints = append(resp.Endpoints, eh)
		}

		code := http.StatusOK
		if snap.FirstHealthy() < 0 {
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(resp)
	})
	return metrics.NewMiddleware(collector, mux)
}
