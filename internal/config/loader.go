package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/internal/storage"
	"github.com/Nash0810/multiminio/pkg/multiminio"
)

// Defaults not covered by the library
const (
	DefaultLogLevel        = "info"
	DefaultAdminAddr       = ":9090"
	DefaultMetricsInterval = 5.0
)

// LoadConfig reads YAML file and parses it into Config struct
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.LoadBalance == "" {
		config.LoadBalance = string(multiminio.Fallback)
	}
	if config.FallbackTimeout == 0 {
		config.FallbackTimeout = multiminio.DefaultFallbackTimeout.Seconds()
	}
	if config.HealthCheckTimeout == 0 {
		config.HealthCheckTimeout = multiminio.DefaultHealthCheckTimeout.Seconds()
	}
	if config.HealthCheckHeartbeat == 0 {
		config.HealthCheckHeartbeat = multiminio.DefaultHealthCheckHeartbeat.Seconds()
	}
	if config.MaxTryTimeout == 0 {
		config.MaxTryTimeout = multiminio.DefaultMaxTryTimeout.Seconds()
	}
	if config.HealthCheckMinInterval == 0 {
		config.HealthCheckMinInterval = multiminio.DefaultHealthCheckMinInterval.Seconds()
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.AdminAddr == "" {
		config.AdminAddr = DefaultAdminAddr
	}
	if config.MetricsInterval == 0 {
		config.MetricsInterval = DefaultMetricsInterval
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Build creates one minio client per endpoint and returns the facade
// configuration. The result still goes through multiminio.New validation.
func (c *Config) Build(logger *logging.Logger, collector *metrics.Collector) (multiminio.Config, error) {
	lb, err := multiminio.ParseLoadBalanceType(c.LoadBalance)
	if err != nil {
		return multiminio.Config{}, err
	}

	clients := make([]storage.Client, 0, len(c.Endpoints))
	for i, e := range c.Endpoints {
		client, err := storage.NewClient(e.Settings())
		if err != nil {
			return multiminio.Config{}, fmt.Errorf("endpoint %d: %w", i, err)
		}
		clients = append(clients, client)
	}

	cfg := multiminio.DefaultConfig(clients...)
	cfg.LoadBalance = lb
	cfg.FallbackTimeout = Seconds(c.FallbackTimeout)
	cfg.HealthCheckTimeout = Seconds(c.HealthCheckTimeout)
	cfg.HealthCheckHeartbeat = Seconds(c.HealthCheckHeartbeat)
	cfg.MaxTryTimeout = Seconds(c.MaxTryTimeout)
	cfg.HealthCheckMinInterval = Seconds(c.HealthCheckMinInterval)
	cfg.Logger = logger
	cfg.Metrics = collector
	return cfg, cfg.Validate()
}
