// Package health provides the liveness and readiness endpoints served
// next to the metrics endpoint.
//
//	checker := health.NewChecker(version)
//	checker.RegisterCheck("server", func() health.Check { ... })
//
//	mux.HandleFunc("/health", checker.HealthHandler())
//	mux.HandleFunc("/ready", checker.ReadinessHandler())
//	mux.HandleFunc("/live", checker.LivenessHandler())
package health
