package config

import (
	"time"

	"github.com/vyrodovalexey/avaroute/internal/router"
)

// Route binds a path pattern and a set of methods to either a proxied
// backend or a fixed direct response.
type Route struct {
	Name           string                `yaml:"name" json:"name"`
	Methods        []string              `yaml:"methods,omitempty" json:"methods,omitempty"`
	Path           string                `yaml:"path" json:"path"`
	Backend        string                `yaml:"backend,omitempty" json:"backend,omitempty"`
	Rewrite        string                `yaml:"rewrite,omitempty" json:"rewrite,omitempty"`
	Timeout        Duration              `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	DirectResponse *DirectResponseConfig `yaml:"directResponse,omitempty" json:"directResponse,omitempty"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// DirectResponseConfig is a fixed response served without a backend.
type DirectResponseConfig struct {
	Status  int               `yaml:"status" json:"status"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// CircuitBreakerConfig configures the per-route backend breaker.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Threshold is the number of consecutive failures that opens the breaker.
	Threshold uint32 `yaml:"threshold" json:"threshold"`
	// Timeout is how long the breaker stays open before probing.
	Timeout Duration `yaml:"timeout" json:"timeout"`
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32 `yaml:"halfOpenRequests" json:"halfOpenRequests"`
}

func (r *Route) applyDefaults() {
	if len(r.Methods) == 0 {
		r.Methods = router.SupportedMethods()
	}
	if r.Backend != "" && r.Timeout == 0 {
		r.Timeout = Duration(DefaultRouteTimeout)
	}
	if r.DirectResponse != nil && r.DirectResponse.Status == 0 {
		r.DirectResponse.Status = 200
	}
	if cb := r.CircuitBreaker; cb != nil {
		if cb.Threshold == 0 {
			cb.Threshold = 5
		}
		if cb.Timeout == 0 {
			cb.Timeout = Duration(30 * time.Second)
		}
		if cb.HalfOpenRequests == 0 {
			cb.HalfOpenRequests = 1
		}
	}
}
