package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/gateway"
	"github.com/vyrodovalexey/avaroute/internal/health"
	"github.com/vyrodovalexey/avaroute/internal/middleware"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit"
	"github.com/vyrodovalexey/avaroute/internal/router"
)

// globalRateLimitRoute labels rate limit hits of the gateway-wide limiter.
const globalRateLimitRoute = "global"

// application holds all application components.
type application struct {
	config        *config.GatewayConfig
	logger        observability.Logger
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	limiter       ratelimit.Limiter
	dispatcher    *gateway.Dispatcher
	server        *gateway.Server
	metricsServer *gateway.Server
	healthChecker *health.Checker
}

// initApplication wires every component from cfg. Nothing is listening
// yet when it returns.
func initApplication(ctx context.Context, cfg *config.GatewayConfig, logger observability.Logger) (*application, error) {
	metrics := observability.NewMetrics(cfg.Observability.Metrics.Namespace)
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := initTracer(cfg)
	if err != nil {
		return nil, err
	}

	recorder, err := router.NewPrometheusRecorder(metrics.Registry(), metrics.Namespace())
	if err != nil {
		return nil, fmt.Errorf("failed to register router metrics: %w", err)
	}

	limiter, err := ratelimit.NewFromConfig(ctx, cfg.RateLimit, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	dispatcherOpts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithTracer(tracer),
		gateway.WithMatchRecorder(recorder),
	}
	perRoute := cfg.RateLimit != nil && cfg.RateLimit.Enabled && cfg.RateLimit.PerRoute
	if perRoute {
		dispatcherOpts = append(dispatcherOpts, gateway.WithRouteLimiter(limiter))
	}

	dispatcher := gateway.NewDispatcher(dispatcherOpts...)
	if err := dispatcher.Reload(cfg); err != nil {
		_ = limiter.Close()
		return nil, fmt.Errorf("failed to build routes: %w", err)
	}

	var globalLimiter ratelimit.Limiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled && !perRoute {
		globalLimiter = limiter
	}
	handler := buildMiddlewareChain(dispatcher, logger, metrics, tracer, globalLimiter)

	server, err := gateway.NewServer(cfg.Listener, handler,
		gateway.WithServerLogger(logger),
		gateway.WithServerName(cfg.Name),
	)
	if err != nil {
		_ = limiter.Close()
		return nil, err
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		limiter:       limiter,
		dispatcher:    dispatcher,
		server:        server,
		healthChecker: health.NewChecker(version),
	}
	app.registerHealthChecks()

	if cfg.Observability.Metrics.Enabled {
		app.metricsServer, err = newMetricsServer(cfg.Observability.Metrics, metrics, app.healthChecker, logger)
		if err != nil {
			_ = limiter.Close()
			return nil, err
		}
	}

	stats := dispatcher.Router().Stats()
	logger.Info("router ready",
		observability.Int("routes", stats.TotalRoutes),
		observability.Strings("supported_methods", stats.SupportedMethods),
	)

	return app, nil
}

// buildMiddlewareChain builds the middleware chain.
// The execution order (outermost executes first):
// Recovery -> RequestID -> Tracing -> Logging -> RateLimit -> [dispatcher]
//
// Tracing runs before Logging so access log lines carry trace ids.
func buildMiddlewareChain(
	dispatcher http.Handler,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	limiter ratelimit.Limiter,
) http.Handler {
	var rateLimit middleware.Middleware
	if limiter != nil {
		rateLimit = middleware.RateLimit(limiter,
			middleware.WithRateLimitLogger(logger),
			middleware.WithRateLimitMetrics(metrics, globalRateLimitRoute),
		)
	}

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		observability.TracingMiddleware(tracer),
		middleware.Logging(logger),
		rateLimit,
	)(dispatcher)
}

func (app *application) registerHealthChecks() {
	app.healthChecker.RegisterCheck("server", func() health.Check {
		if app.server.IsRunning() {
			return health.Check{Status: health.StatusHealthy}
		}
		return health.Check{Status: health.StatusUnhealthy, Message: "server " + app.server.State().String()}
	})

	app.healthChecker.RegisterCheck("routes", func() health.Check {
		if n := app.dispatcher.Router().Len(); n > 0 {
			return health.Check{Status: health.StatusHealthy, Message: fmt.Sprintf("%d routes", n)}
		}
		return health.Check{Status: health.StatusDegraded, Message: "no routes registered"}
	})

	if p, ok := app.limiter.(interface{ Ping(context.Context) error }); ok {
		app.healthChecker.RegisterCheck("rate_limit_store", health.PingCheck(p.Ping, 2*time.Second, false))
	}
}

// newMetricsServer serves metrics and health endpoints on their own port.
func newMetricsServer(
	cfg config.MetricsConfig,
	metrics *observability.Metrics,
	checker *health.Checker,
	logger observability.Logger,
) (*gateway.Server, error) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())
	mux.HandleFunc("/health", checker.HealthHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.HandleFunc("/live", checker.LivenessHandler())

	return gateway.NewServer(config.Listener{
		Port:            cfg.Port,
		ReadTimeout:     config.Duration(10 * time.Second),
		WriteTimeout:    config.Duration(10 * time.Second),
		ShutdownTimeout: config.Duration(5 * time.Second),
	}, mux,
		gateway.WithServerLogger(logger),
		gateway.WithServerName("metrics"),
	)
}
