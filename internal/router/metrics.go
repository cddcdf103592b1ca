package router

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies a match attempt.
type Outcome string

// Match outcomes.
const (
	OutcomeMatched           Outcome = "matched"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeUnsupportedMethod Outcome = "unsupported_method"
)

// MatchRecorder receives router activity. Implementations must be safe
// for concurrent use.
type MatchRecorder interface {
	RecordMatch(outcome Outcome)
	SetRoutes(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordMatch(Outcome) {}
func (nopRecorder) SetRoutes(int)       {}

// PrometheusRecorder exports router activity as Prometheus metrics.
type PrometheusRecorder struct {
	matches *prometheus.CounterVec
	routes  prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder and registers its collectors
// with reg. Registering twice against the same registry reuses the
// existing collectors, so rebuilt routers share one set of series.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	matches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "route_matches_total",
			Help:      "Total number of route resolutions by outcome",
		},
		[]string{"result"},
	)
	routes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "routes_registered",
			Help:      "Number of distinct method and pattern registrations",
		},
	)

	var err error
	if matches, err = registerOrExisting(reg, matches); err != nil {
		return nil, err
	}
	if routes, err = registerOrExisting(reg, routes); err != nil {
		return nil, err
	}

	return &PrometheusRecorder{matches: matches, routes: routes}, nil
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMatch increments the outcome counter.
func (p *PrometheusRecorder) RecordMatch(outcome Outcome) {
	p.matches.WithLabelValues(string(outcome)).Inc()
}

// SetRoutes sets the registered routes gauge.
func (p *PrometheusRecorder) SetRoutes(n int) {
	p.routes.Set(float64(n))
}
