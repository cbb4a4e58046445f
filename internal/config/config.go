package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Nash0810/multiminio/internal/storage"
)

// Config represents the multiminio file configuration
type Config struct {
	Endpoints   []EndpointConfig `yaml:"endpoints"`    // Endpoints in priority order
	LoadBalance string           `yaml:"load_balance"` // Only "fallback" is supported

	// Timings in seconds
	FallbackTimeout        float64 `yaml:"fallback_timeout"`
	HealthCheckTimeout     float64 `yaml:"health_check_timeout"`
	HealthCheckHeartbeat   float64 `yaml:"health_check_heartbeat"`
	MaxTryTimeout          float64 `yaml:"max_try_timeout"`
	HealthCheckMinInterval float64 `yaml:"health_check_min_interval"`

	LogLevel        string  `yaml:"log_level"`        // debug, info, warn, error
	AdminAddr       string  `yaml:"admin_addr"`       // Listen address of the serve command
	MetricsInterval float64 `yaml:"metrics_interval"` // Seconds between gauge exports
}

// EndpointConfig represents a single storage endpoint
type EndpointConfig struct {
	URL       string `yaml:"url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region,omitempty"`
}

// Settings expands ${VAR} references and returns the client settings
func (e EndpointConfig) Settings() storage.Settings {
	return storage.Settings{
		URL:       os.ExpandEnv(e.URL),
		AccessKey: os.ExpandEnv(e.AccessKey),
		SecretKey: os.ExpandEnv(e.SecretKey),
		Region:    os.ExpandEnv(e.Region),
	}
}

// Seconds converts a seconds value from the file into a duration
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate checks the parts of the configuration that do not need clients
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}
	for i, e := range c.Endpoints {
		if e.URL == "" {
			return fmt.Errorf("endpoint %d: url is required", i)
		}
	}

	timings := map[string]float64{
		"fallback_timeout":          c.FallbackTimeout,
		"health_check_timeout":      c.HealthCheckTimeout,
		"health_check_heartbeat":    c.HealthCheckHeartbeat,
		"max_try_timeout":           c.MaxTryTimeout,
		"health_check_min_interval": c.HealthCheckMinInterval,
		"metrics_interval":          c.MetricsInterval,
	}
	for name, v := range timings {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, v)
		}
	}
	return nil
}
