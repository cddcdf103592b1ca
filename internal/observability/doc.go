// Package observability provides logging, metrics, and tracing for the
// gateway and its route-matching engine.
//
// # Logging
//
// The Logger interface wraps zap. There is no package-level logger;
// components receive one through their functional options:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = logger.Sync() }()
//
// # Metrics
//
// Metrics owns a dedicated Prometheus registry. Route labels always carry
// the matched pattern, or "unmatched", so cardinality stays bounded:
//
//	metrics := observability.NewMetrics("gateway")
//	mux.Handle("/metrics", metrics.Handler())
//
// # Tracing
//
// Tracer wraps an OpenTelemetry SDK provider with an optional OTLP gRPC
// exporter. TracingMiddleware opens the server span and the dispatcher
// renames it after the matched pattern with AnnotateRoute.
package observability
