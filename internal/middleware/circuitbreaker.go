package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

var cbTracer = otel.Tracer("avaroute/circuitbreaker")

// CircuitBreakerStateFunc is called when the circuit breaker changes state.
// state follows gobreaker: 0=closed, 1=half-open, 2=open.
type CircuitBreakerStateFunc func(name string, state int)

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	cb            *gobreaker.CircuitBreaker
	logger        observability.Logger
	stateCallback CircuitBreakerStateFunc
}

// CircuitBreakerOption is a functional option for configuring the circuit breaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithCircuitBreakerLogger sets the logger for the circuit breaker.
func WithCircuitBreakerLogger(logger observability.Logger) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.logger = logger
	}
}

// WithCircuitBreakerStateCallback sets a callback for circuit breaker state changes.
func WithCircuitBreakerStateCallback(fn CircuitBreakerStateFunc) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.stateCallback = fn
	}
}

// NewCircuitBreaker creates a breaker that opens after cfg.Threshold
// consecutive failures and probes again after cfg.Timeout.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(cb)
	}

	threshold := cfg.Threshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.Timeout.Duration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cb.onStateChange,
	}

	cb.cb = gobreaker.NewCircuitBreaker(settings)
	return cb
}

func (cb *CircuitBreaker) onStateChange(name string, from, to gobreaker.State) {
	cb.logger.Info("circuit breaker state change",
		observability.String("name", name),
		observability.String("from", from.String()),
		observability.String("to", to.String()),
	)

	_, span := cbTracer.Start(context.Background(), "circuitbreaker.state_change",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.AddEvent("state_change", trace.WithAttributes(
		attribute.String("circuitbreaker.name", name),
		attribute.String("circuitbreaker.from", from.String()),
		attribute.String("circuitbreaker.to", to.String()),
	))
	span.End()

	if cb.stateCallback != nil {
		cb.stateCallback(name, int(to))
	}
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.cb.Name()
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.cb.State()
}

// CircuitBreakerMiddleware counts 5xx responses from next as failures and
// answers 503 without calling next while the breaker is open.
func CircuitBreakerMiddleware(cb *CircuitBreaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := util.NewStatusCapturingResponseWriter(w)

			_, err := cb.cb.Execute(func() (interface{}, error) {
				next.ServeHTTP(rw, r)
				if rw.StatusCode >= http.StatusInternalServerError {
					return nil, util.NewServerError(rw.StatusCode)
				}
				return nil, nil
			})

			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				cb.logger.WithContext(r.Context()).Warn("circuit breaker rejected request",
					observability.String("name", cb.Name()),
					observability.String("path", r.URL.Path),
					observability.String("state", cb.State().String()),
				)

				if !rw.HeaderWritten {
					util.WriteJSONError(w, http.StatusServiceUnavailable,
						util.NewCircuitOpenError(cb.Name(), cb.State().String()).Error())
				}
			}
		})
	}
}
