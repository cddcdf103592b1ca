package main

import (
	"fmt"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// loadAndValidateConfig resolves, loads and validates the configuration
// and returns it with the resolved path.
func loadAndValidateConfig(configPath string, logger observability.Logger) (*config.GatewayConfig, string, error) {
	logger.Info("starting avaroute",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	path, err := config.ResolveConfigPath(configPath)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("configuration loaded",
		observability.String("name", cfg.Name),
		observability.String("path", path),
		observability.Int("routes", len(cfg.Routes)),
		observability.Bool("rate_limit", cfg.RateLimit != nil && cfg.RateLimit.Enabled),
		observability.Bool("metrics", cfg.Observability.Metrics.Enabled),
		observability.Bool("tracing", cfg.Observability.Tracing.Enabled),
	)

	return cfg, path, nil
}

// configuredLogger rebuilds the logger from the configuration file.
// Values given on the command line win.
func configuredLogger(flags cliFlags, cfg *config.GatewayConfig) (observability.Logger, error) {
	logCfg := cfg.Observability.Logging

	level := flags.logLevel
	if level == "" {
		level = logCfg.Level
	}
	format := flags.logFormat
	if format == "" {
		format = logCfg.Format
	}
	return initLogger(level, format, logCfg.Output)
}

// initTracer initializes the tracer.
func initTracer(cfg *config.GatewayConfig) (*observability.Tracer, error) {
	tc := cfg.Observability.Tracing

	serviceName := tc.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  serviceName,
		OTLPEndpoint: tc.Endpoint,
		SamplingRate: tc.SamplingRate,
		Enabled:      tc.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	return tracer, nil
}
