package gateway

import (
	"fmt"
	"io"
	"net/http"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/middleware"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/proxy"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
	"github.com/vyrodovalexey/avaroute/internal/router"
)

// BuildOption is a functional option for BuildRouter.
type BuildOption func(*buildOptions)

type buildOptions struct {
	routerOpts []router.Option
	logger     observability.Logger
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	limiter    ratelimit.Limiter
	transport  http.RoundTripper
}

// BuildWithRouterOptions forwards options to router.New.
func BuildWithRouterOptions(opts ...router.Option) BuildOption {
	return func(o *buildOptions) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// BuildWithLogger sets the logger handed to route handlers.
func BuildWithLogger(logger observability.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// BuildWithMetrics reports breaker states and rate limit hits.
func BuildWithMetrics(m *observability.Metrics) BuildOption {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

// BuildWithTracer propagates trace context to backends.
func BuildWithTracer(t *observability.Tracer) BuildOption {
	return func(o *buildOptions) {
		o.tracer = t
	}
}

// BuildWithLimiter wraps every route in a per-route rate limit.
func BuildWithLimiter(l ratelimit.Limiter) BuildOption {
	return func(o *buildOptions) {
		o.limiter = l
	}
}

// BuildWithTransport sets the transport used by backend proxies.
func BuildWithTransport(rt http.RoundTripper) BuildOption {
	return func(o *buildOptions) {
		o.transport = rt
	}
}

// namedHandler carries the configured route name to the dispatcher.
type namedHandler struct {
	name string
	http.Handler
}

func (h namedHandler) RouteName() string {
	return h.name
}

func routeName(h http.Handler) string {
	if n, ok := h.(interface{ RouteName() string }); ok {
		return n.RouteName()
	}
	return ""
}

// BuildRouter compiles cfg.Routes into a router. Every method of every
// route is registered; the first rejected registration fails the whole
// build and no router is returned.
func BuildRouter(cfg *config.GatewayConfig, opts ...BuildOption) (*router.Router[http.Handler], error) {
	o := &buildOptions{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(o)
	}

	rt := router.New[http.Handler](o.routerOpts...)
	if cfg == nil {
		return rt, nil
	}

	for i := range cfg.Routes {
		route := &cfg.Routes[i]

		h, err := buildHandler(route, o)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", route.Name, err)
		}

		methods := route.Methods
		if len(methods) == 0 {
			methods = router.SupportedMethods()
		}
		for _, method := range methods {
			if err := rt.AddRoute(method, route.Path, h); err != nil {
				return nil, fmt.Errorf("route %q: %w", route.Name, err)
			}
		}
	}

	stats := rt.Stats()
	o.logger.Info("route table built",
		observability.Int("routes", stats.TotalRoutes),
		observability.Any("routes_by_method", stats.RoutesByMethod),
		observability.Strings("supported_methods", stats.SupportedMethods),
	)

	return rt, nil
}

func buildHandler(route *config.Route, o *buildOptions) (http.Handler, error) {
	var h http.Handler

	switch {
	case route.DirectResponse != nil:
		h = directResponse(route.DirectResponse)

	case route.Backend != "":
		b, err := proxy.NewBackend(route.Name, route.Backend,
			proxy.WithRewrite(route.Rewrite),
			proxy.WithTimeout(route.Timeout.Duration()),
			proxy.WithTracer(o.tracer),
			proxy.WithTransport(o.transport),
			proxy.WithProxyLogger(o.logger),
		)
		if err != nil {
			return nil, err
		}
		h = b

		if cb := route.CircuitBreaker; cb != nil && cb.Enabled {
			h = middleware.CircuitBreakerMiddleware(newBreaker(route.Name, *cb, o))(h)
		}

	default:
		return nil, fmt.Errorf("no backend or direct response configured")
	}

	if o.limiter != nil {
		rlOpts := []middleware.RateLimitOption{
			middleware.WithKeyFunc(ratelimit.PerRouteKeyFunc(route.Name, ratelimit.ClientIP)),
			middleware.WithRateLimitLogger(o.logger),
		}
		if o.metrics != nil {
			rlOpts = append(rlOpts, middleware.WithRateLimitMetrics(o.metrics, route.Path))
		}
		h = middleware.RateLimit(o.limiter, rlOpts...)(h)
	}

	return namedHandler{name: route.Name, Handler: h}, nil
}

func newBreaker(name string, cfg config.CircuitBreakerConfig, o *buildOptions) *middleware.CircuitBreaker {
	opts := []middleware.CircuitBreakerOption{middleware.WithCircuitBreakerLogger(o.logger)}
	if o.metrics != nil {
		m := o.metrics
		m.SetCircuitBreakerState(name, 0)
		opts = append(opts, middleware.WithCircuitBreakerStateCallback(m.SetCircuitBreakerState))
	}
	return middleware.NewCircuitBreaker(name, cfg, opts...)
}

func directResponse(dr *config.DirectResponseConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for key, value := range dr.Headers {
			w.Header().Set(key, value)
		}

		status := dr.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)

		if dr.Body != "" {
			_, _ = io.WriteString(w, dr.Body)
		}
	})
}
