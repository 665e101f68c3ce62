// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, and distributed tracing integration. Security events such
// as replay detections and state validation failures get dedicated signals so they can
// be alerted on independently of ordinary request traffic.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("Server started")
//
// Context-aware logging:
//
//	logger.WithField("session_id", sid).Warn("Session terminated by provider")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(registry)
//	metrics.AuthenticationsTotal.WithLabelValues("oidc-google", "oidc", "success").Inc()
//	metrics.ReplayDetectionsTotal.Inc()
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker()
//	checker.AddDependency("redis", redisStore, false)
//	status := checker.Check(ctx)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		ServiceName: "gatehouse",
//		Endpoint:    "otel-collector:4317",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/replay: increments ReplayDetectionsTotal
//   - pkg/state: increments StateValidationsTotal
//   - pkg/logout: increments LogoutTotal
//   - pkg/cas: increments TicketStoreOpsTotal
//   - pkg/config: observability configuration
package observability
