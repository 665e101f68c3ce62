package store

import (
	"context"
	"time"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

// InstrumentedStore wraps a Store and records operation counts, latencies,
// and errors. The backend label distinguishes stores when a deployment runs
// several, e.g. "memory_index" next to "redis_tickets".
type InstrumentedStore struct {
	inner   Store
	backend string
	metrics *observability.Metrics
}

// NewInstrumentedStore wraps inner. A nil metrics returns inner unchanged,
// so callers can wrap unconditionally.
func NewInstrumentedStore(inner Store, backend string, metrics *observability.Metrics) Store {
	if metrics == nil {
		return inner
	}
	return &InstrumentedStore{inner: inner, backend: backend, metrics: metrics}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	s.record("get", start, err)
	return value, ok, err
}

func (s *InstrumentedStore) Put(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.inner.Put(ctx, key, value)
	s.record("put", start, err)
	return err
}

func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Remove(ctx, key)
	s.record("remove", start, err)
	return err
}

func (s *InstrumentedStore) CleanUp(ctx context.Context) error {
	start := time.Now()
	err := s.inner.CleanUp(ctx)
	s.record("cleanup", start, err)
	return err
}

func (s *InstrumentedStore) record(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.StoreErrorsTotal.WithLabelValues(op, s.backend).Inc()
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(op, s.backend, status).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op, s.backend).Observe(time.Since(start).Seconds())
}
