package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestHealthCheckerAllHealthy(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddDependency("redis", &stubPinger{}, true)

	status := checker.Check(context.Background())

	assert.Equal(t, StatusHealthy, status.Status)
	require.Contains(t, status.Dependencies, "redis")
	assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)
}

func TestHealthCheckerCriticalDown(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddDependency("redis", &stubPinger{err: errors.New("connection refused")}, true)

	status := checker.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "connection refused", status.Dependencies["redis"].Message)
}

func TestHealthCheckerNonCriticalDegrades(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddDependency("redis", &stubPinger{}, true)
	checker.AddDependency("otel-collector", &stubPinger{err: errors.New("timeout")}, false)

	status := checker.Check(context.Background())

	assert.Equal(t, StatusDegraded, status.Status)
}

func TestReadinessStatusCodes(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddDependency("redis", &stubPinger{err: errors.New("down")}, true)

	rec := httptest.NewRecorder()
	checker.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	healthy := NewHealthChecker()
	rec = httptest.NewRecorder()
	healthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusHealthy, status.Status)
}

func TestLivenessAlwaysOK(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddDependency("redis", &stubPinger{err: errors.New("down")}, true)

	rec := httptest.NewRecorder()
	checker.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
