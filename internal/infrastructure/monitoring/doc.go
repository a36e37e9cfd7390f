/*
Package monitoring provides Prometheus metrics for the module host.

All collectors live on a private registry so tests and multiple servers in
one process never collide on registration.

# Metrics

  - HTTP request counts, latency and response size by route
  - Module invocations by outcome, duration, in-flight count
  - Non-zero exit codes and captured bytes per channel
  - Artifact loads by strategy, fallbacks, artifact size
  - Circuit breaker state
  - WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.StartExecution(metrics, "cvrf-review")
	// ... run the module ...
	timer.Stop(monitoring.StatusOK)

A nil *Metrics is valid and records nothing.
*/
package monitoring
