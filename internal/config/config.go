package config

import "time"

// Default configuration values.
const (
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultMetricsPath     = "/metrics"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRouteTimeout    = 30 * time.Second
	DefaultServiceName     = "avaroute"
)

// GatewayConfig is the root of the configuration file.
type GatewayConfig struct {
	Name          string              `yaml:"name" json:"name"`
	Listener      Listener            `yaml:"listener" json:"listener"`
	Routes        []Route             `yaml:"routes" json:"routes"`
	RateLimit     *RateLimitConfig    `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	Redis         *RedisConfig        `yaml:"redis,omitempty" json:"redis,omitempty"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// Listener configures the HTTP server.
type Listener struct {
	Address         string   `yaml:"address" json:"address"`
	Port            int      `yaml:"port" json:"port"`
	ReadTimeout     Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout    Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout     Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// ObservabilityConfig groups logging, metrics and tracing settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Port      int    `yaml:"port" json:"port"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Endpoint     string  `yaml:"endpoint" json:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
}

// DefaultConfig returns a configuration with defaults and no routes.
func DefaultConfig() *GatewayConfig {
	cfg := &GatewayConfig{Name: DefaultServiceName}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func (c *GatewayConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultServiceName
	}

	l := &c.Listener
	if l.Port == 0 {
		l.Port = DefaultPort
	}
	if l.ReadTimeout == 0 {
		l.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if l.WriteTimeout == 0 {
		l.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if l.IdleTimeout == 0 {
		l.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if l.ShutdownTimeout == 0 {
		l.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	o := &c.Observability
	if o.Logging.Level == "" {
		o.Logging.Level = "info"
	}
	if o.Logging.Format == "" {
		o.Logging.Format = "json"
	}
	if o.Metrics.Port == 0 {
		o.Metrics.Port = DefaultMetricsPort
	}
	if o.Metrics.Path == "" {
		o.Metrics.Path = DefaultMetricsPath
	}
	if o.Metrics.Namespace == "" {
		o.Metrics.Namespace = "gateway"
	}
	if o.Tracing.ServiceName == "" {
		o.Tracing.ServiceName = c.Name
	}

	for i := range c.Routes {
		c.Routes[i].applyDefaults()
	}

	if c.RateLimit != nil {
		c.RateLimit.applyDefaults()
	}
}
