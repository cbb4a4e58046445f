package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nash0810/multiminio/internal/config"
	"github.com/Nash0810/multiminio/internal/logging"
	"github.com/Nash0810/multiminio/internal/metrics"
	"github.com/Nash0810/multiminio/pkg/multiminio"
)

const defaultConfigPath = "configs/multiminio.yaml"

// app carries the settings resolved by the root command
type app struct {
	v *viper.Viper
}

// NewRootCmd creates the root multiminio command with all subcommands registered
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "multiminio",
		Short:         "Fallback client over several object-storage endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", defaultConfigPath, "path to config file")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newHealthCmd(a),
		newLsCmd(a),
		newStatCmd(a),
		newGetCmd(a),
		newPutCmd(a),
		newRmCmd(a),
		newServeCmd(a),
	)
	return root
}

// initViper binds flags and MULTIMINIO_* environment variables; flags win
func (a *app) initViper(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("multiminio")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlag("config", cmd.Root().PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("binding config flag: %w", err)
	}
	if err := a.v.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("binding log-level flag: %w", err)
	}
	return nil
}

func (a *app) configPath() string {
	return a.v.GetString("config")
}

// loadConfig reads the config file and applies the log level override
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath())
	if err != nil {
		return nil, err
	}
	if lvl := a.v.GetString("log_level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func (a *app) logger(cfg *config.Config) (*logging.Logger, error) {
	return logging.NewLoggerWithLevel("multiminio", cfg.LogLevel)
}

// client loads the configuration and builds a facade over it
func (a *app) client(collector *metrics.Collector) (*multiminio.MultiClient, *logging.Logger, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := a.logger(cfg)
	if err != nil {
		return nil, nil, err
	}
	mc, err := newFacade(cfg, logger, collector)
	if err != nil {
		return nil, nil, err
	}
	return mc, logger, nil
}

func newFacade(cfg *config.Config, logger *logging.Logger, collector *metrics.Collector) (*multiminio.MultiClient, error) {
	mcfg, err := cfg.Build(logger, collector)
	if err != nil {
		return nil, err
	}
	return multiminio.New(mcfg)
}
