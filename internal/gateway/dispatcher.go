package gateway

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
	"github.com/vyrodovalexey/avaroute/internal/router"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// methodOther labels requests whose method the router does not support.
const methodOther = "OTHER"

// Dispatcher is the http.Handler in front of the route table.
type Dispatcher struct {
	router atomic.Pointer[router.Router[http.Handler]]

	logger    observability.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	recorder  router.MatchRecorder
	limiter   ratelimit.Limiter
	transport http.RoundTripper
}

// Option is a functional option for configuring the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for the dispatcher and the routers it builds.
func WithLogger(logger observability.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics enables request metrics and breaker state reporting.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithTracer annotates server spans with the matched route and
// propagates trace context to backends.
func WithTracer(t *observability.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// WithMatchRecorder sets the recorder passed to every built router.
func WithMatchRecorder(rec router.MatchRecorder) Option {
	return func(d *Dispatcher) {
		d.recorder = rec
	}
}

// WithRouteLimiter applies limiter to every route, keyed per route.
func WithRouteLimiter(limiter ratelimit.Limiter) Option {
	return func(d *Dispatcher) {
		d.limiter = limiter
	}
}

// WithTransport sets the transport used by backend proxies.
func WithTransport(rt http.RoundTripper) Option {
	return func(d *Dispatcher) {
		d.transport = rt
	}
}

// NewDispatcher creates a dispatcher serving an empty route table.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.router.Store(router.New[http.Handler](d.routerOptions()...))
	return d
}

func (d *Dispatcher) routerOptions() []router.Option {
	opts := []router.Option{router.WithLogger(d.logger)}
	if d.recorder != nil {
		opts = append(opts, router.WithMatchRecorder(d.recorder))
	}
	return opts
}

// Router returns the route table currently in service.
func (d *Dispatcher) Router() *router.Router[http.Handler] {
	return d.router.Load()
}

// Reload compiles cfg into a new route table and swaps it in. On error
// the table in service is kept.
func (d *Dispatcher) Reload(cfg *config.GatewayConfig) error {
	rt, err := d.build(cfg)
	if err != nil {
		if d.recorder != nil {
			d.recorder.SetRoutes(d.Router().Len())
		}
		d.logger.Error("route table rebuild failed, keeping previous table",
			observability.Error(err),
		)
		return err
	}

	old := d.router.Swap(rt)
	d.logger.Info("route table swapped",
		observability.Int("routes", rt.Len()),
		observability.Int("previous_routes", old.Len()),
	)
	return nil
}

func (d *Dispatcher) build(cfg *config.GatewayConfig) (*router.Router[http.Handler], error) {
	return BuildRouter(cfg,
		BuildWithRouterOptions(d.routerOptions()...),
		BuildWithLogger(d.logger),
		BuildWithMetrics(d.metrics),
		BuildWithTracer(d.tracer),
		BuildWithLimiter(d.limiter),
		BuildWithTransport(d.transport),
	)
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if d.metrics != nil {
		d.metrics.IncrementActiveRequests()
		defer d.metrics.DecrementActiveRequests()
	}

	rt := d.router.Load()
	rw := util.NewStatusCapturingResponseWriter(w)
	methodLabel := methodOther
	if m, perr := router.ParseMethod(r.Method); perr == nil {
		methodLabel = m.String()
	}

	var pattern string
	match, err := rt.Match(r.Method, r.URL.Path)
	switch {
	case err == nil:
		pattern = match.Pattern
		ctx := util.ContextWithPathParams(r.Context(), match.Params)
		ctx = util.ContextWithRoute(ctx, match.Pattern)
		util.RecordRoute(ctx, routeName(match.Handler), match.Pattern)
		observability.AnnotateRoute(ctx, match.Method.String(), match.Pattern, len(match.Params))

		match.Handler.ServeHTTP(rw, r.WithContext(ctx))

	case errors.Is(err, util.ErrUnsupportedMethod):
		rw.Header().Set("Allow", strings.Join(rt.SupportedMethods(), ", "))
		util.WriteJSONError(rw, http.StatusNotImplemented, err.Error())

	default:
		d.logger.WithContext(r.Context()).Debug("route not found",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
		)
		util.WriteJSONError(rw, http.StatusNotFound, err.Error())
	}

	if d.metrics != nil {
		d.metrics.RecordRequest(methodLabel, pattern, rw.StatusCode, time.Since(start), int64(rw.BytesWritten))
	}
}
