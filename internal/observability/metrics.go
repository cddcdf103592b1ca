package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute is the route label value used for requests that do
// not match any registered pattern, keeping label cardinality bounded.
const UnmatchedRoute = "unmatched"

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	namespace       string
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	circuitBreaker  *prometheus.GaugeVec
	rateLimitHits   *prometheus.CounterVec
	configReloads   *prometheus.CounterVec
	buildInfo       *prometheus.GaugeVec
	startTime       prometheus.Gauge
	registry        *prometheus.Registry
}

// NewMetrics creates a new Metrics instance backed by its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	m := &Metrics{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route", "status"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(
				100, 10, 8,
			),
		},
		[]string{"method", "route", "status"},
	)

	m.activeRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests being dispatched",
		},
	)

	m.circuitBreaker = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help: "Circuit breaker state " +
				"(0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	m.rateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help: "Total number of requests " +
				"rejected by admission control",
		},
		[]string{"route"},
	)

	m.configReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reload_total",
			Help:      "Total number of configuration reloads",
		},
		[]string{"result"},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information for the gateway",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help: "Start time of the gateway " +
				"in unix seconds",
		},
	)

	m.registerCollectors()

	m.startTime.SetToCurrentTime()

	return m
}

// registerCollectors registers all metric collectors with the
// Prometheus registry.
func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.activeRequests,
		m.circuitBreaker,
		m.rateLimitHits,
		m.configReloads,
		m.buildInfo,
		m.startTime,
	)

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)
}

// Namespace returns the metric namespace.
func (m *Metrics) Namespace() string {
	return m.namespace
}

// RecordRequest records a dispatched HTTP request.
// The route parameter must be the matched pattern, never the raw
// request path.
func (m *Metrics) RecordRequest(
	method, route string,
	status int,
	duration time.Duration,
	respSize int64,
) {
	if route == "" {
		route = UnmatchedRoute
	}
	statusStr := strconv.Itoa(status)

	m.requestsTotal.WithLabelValues(
		method, route, statusStr,
	).Inc()
	m.requestDuration.WithLabelValues(
		method, route, statusStr,
	).Observe(duration.Seconds())
	m.responseSize.WithLabelValues(
		method, route, statusStr,
	).Observe(float64(respSize))
}

// IncrementActiveRequests increments the active requests gauge.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
}

// DecrementActiveRequests decrements the active requests gauge.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// SetCircuitBreakerState sets the circuit breaker state.
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreaker.WithLabelValues(name).Set(float64(state))
}

// RecordRateLimitHit records a request rejected by admission control.
// Client IPs are deliberately not used as labels; they go to logs.
func (m *Metrics) RecordRateLimitHit(route string) {
	if route == "" {
		route = UnmatchedRoute
	}
	m.rateLimitHits.WithLabelValues(route).Inc()
}

// RecordConfigReload records the outcome of a configuration reload.
func (m *Metrics) RecordConfigReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.configReloads.WithLabelValues(result).Inc()
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
