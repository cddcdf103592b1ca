package router

import (
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// Stats summarises a router's registrations.
type Stats struct {
	TotalRoutes      int            `json:"totalRoutes"`
	RoutesByMethod   map[string]int `json:"routesByMethod"`
	SupportedMethods []string       `json:"supportedMethods"`
}

// Router is the string-facing facade over a Table. It parses method
// names, converts misses into typed errors and reports outcomes to its
// logger and MatchRecorder.
type Router[H any] struct {
	table    *Table[H]
	logger   observability.Logger
	recorder MatchRecorder
}

// Option is a functional option for configuring a Router.
type Option func(*options)

type options struct {
	logger   observability.Logger
	recorder MatchRecorder
}

// WithLogger sets the logger for the router.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMatchRecorder sets the recorder that receives match outcomes.
func WithMatchRecorder(recorder MatchRecorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// New creates an empty router.
func New[H any](opts ...Option) *Router[H] {
	o := &options{
		logger:   observability.NopLogger(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Router[H]{
		table:    NewTable[H](),
		logger:   o.logger,
		recorder: o.recorder,
	}
}

// AddRoute registers h for the named method and pattern.
func (r *Router[H]) AddRoute(method, pattern string, h H) error {
	m, err := ParseMethod(method)
	if err == nil {
		var replaced bool
		replaced, err = r.table.add(m, pattern, h)
		if err == nil {
			r.recorder.SetRoutes(r.table.Len())
			r.logger.Debug("route registered",
				observability.String("method", m.String()),
				observability.String("pattern", pattern),
				observability.Bool("replaced", replaced),
			)
			return nil
		}
	}

	r.logger.Warn("route rejected",
		observability.String("method", method),
		observability.String("pattern", pattern),
		observability.Error(err),
	)
	return err
}

// Match resolves a request. Misses are reported as
// *util.UnsupportedMethodError or *util.RouteNotFoundError.
func (r *Router[H]) Match(method, path string) (*RouteMatch[H], error) {
	m, err := ParseMethod(method)
	if err != nil {
		r.recorder.RecordMatch(OutcomeUnsupportedMethod)
		return nil, err
	}

	match, ok := r.table.Match(m, path)
	if !ok {
		r.recorder.RecordMatch(OutcomeNotFound)
		return nil, util.NewRouteNotFoundError(m.String(), path)
	}

	r.recorder.RecordMatch(OutcomeMatched)
	return match, nil
}

// Len returns the number of distinct registrations.
func (r *Router[H]) Len() int {
	return r.table.Len()
}

// Routes lists the registered routes.
func (r *Router[H]) Routes() []RouteInfo {
	return r.table.Routes()
}

// Stats returns registration statistics.
func (r *Router[H]) Stats() Stats {
	return Stats{
		TotalRoutes:      r.table.Len(),
		RoutesByMethod:   r.table.countByMethod(),
		SupportedMethods: SupportedMethods(),
	}
}

// SupportedMethods returns the supported method names.
func (r *Router[H]) SupportedMethods() []string {
	return SupportedMethods()
}
