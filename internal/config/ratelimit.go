package config

import "time"

// Rate limit algorithms.
const (
	AlgorithmTokenBucket = "token_bucket"
	AlgorithmFixedWindow = "fixed_window"
)

// Rate limit stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// RateLimitConfig configures admission control.
type RateLimitConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Algorithm string   `yaml:"algorithm" json:"algorithm"`
	Requests  int      `yaml:"requests" json:"requests"`
	Window    Duration `yaml:"window" json:"window"`
	Burst     int      `yaml:"burst,omitempty" json:"burst,omitempty"`
	// PerRoute keys limits by matched route as well as client.
	PerRoute bool   `yaml:"perRoute,omitempty" json:"perRoute,omitempty"`
	Store    string `yaml:"store,omitempty" json:"store,omitempty"`
}

// RedisConfig configures the shared Redis store.
type RedisConfig struct {
	Address   string   `yaml:"address" json:"address"`
	Password  string   `yaml:"password,omitempty" json:"password,omitempty"`
	DB        int      `yaml:"db,omitempty" json:"db,omitempty"`
	KeyPrefix string   `yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (r *RateLimitConfig) applyDefaults() {
	if r.Algorithm == "" {
		r.Algorithm = AlgorithmTokenBucket
	}
	if r.Window == 0 {
		r.Window = Duration(10 * time.Second)
	}
	if r.Burst == 0 {
		r.Burst = r.Requests
	}
	if r.Store == "" {
		r.Store = StoreMemory
	}
}
