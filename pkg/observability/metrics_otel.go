package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments
type OTelMetrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Authentication metrics
	authenticationsTotal metric.Int64Counter
	replayDetections     metric.Int64Counter
	stateValidations     metric.Int64Counter
	logoutsTotal         metric.Int64Counter

	// Store metrics
	storeOperations metric.Int64Counter
	storeDuration   metric.Float64Histogram
}

// NewOTelMetrics creates a new OTel metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/gatehouse-auth/gatehouse")

	m := &OTelMetrics{}
	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration histogram: %w", err)
	}

	m.authenticationsTotal, err = meter.Int64Counter(
		"auth.attempts.total",
		metric.WithDescription("Total number of completed authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_attempts_total counter: %w", err)
	}

	m.replayDetections, err = meter.Int64Counter(
		"auth.replay.detections.total",
		metric.WithDescription("Total number of rejected replayed authentication artifacts"),
		metric.WithUnit("{detection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replay_detections counter: %w", err)
	}

	m.stateValidations, err = meter.Int64Counter(
		"auth.state.validations.total",
		metric.WithDescription("Total number of CSRF state validations"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state_validations counter: %w", err)
	}

	m.logoutsTotal, err = meter.Int64Counter(
		"auth.logouts.total",
		metric.WithDescription("Total number of provider-initiated logout requests"),
		metric.WithUnit("{logout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logouts_total counter: %w", err)
	}

	m.storeOperations, err = meter.Int64Counter(
		"store.operations.total",
		metric.WithDescription("Total number of token store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store_operations counter: %w", err)
	}

	m.storeDuration, err = meter.Float64Histogram(
		"store.operation.duration",
		metric.WithDescription("Token store operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store_duration histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *OTelMetrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAuthentication records a completed authentication attempt
func (m *OTelMetrics) RecordAuthentication(ctx context.Context, client, protocol string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("auth.client", client),
		attribute.String("auth.protocol", protocol),
		attribute.Bool("error", err != nil),
	}
	m.authenticationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReplayDetection records a rejected replayed artifact
func (m *OTelMetrics) RecordReplayDetection(ctx context.Context, client string) {
	m.replayDetections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("auth.client", client),
	))
}

// RecordStateValidation records a CSRF state validation outcome
func (m *OTelMetrics) RecordStateValidation(ctx context.Context, valid bool) {
	m.stateValidations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("auth.state.valid", valid),
	))
}

// RecordLogout records a provider-initiated logout outcome
func (m *OTelMetrics) RecordLogout(ctx context.Context, outcome string) {
	m.logoutsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("auth.logout.outcome", outcome),
	))
}

// RecordStoreOperation records a token store operation metric
func (m *OTelMetrics) RecordStoreOperation(ctx context.Context, operation, backend string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("store.operation", operation),
		attribute.String("store.backend", backend),
		attribute.Bool("error", err != nil),
	}

	m.storeOperations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.storeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
