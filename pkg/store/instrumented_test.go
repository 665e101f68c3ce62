package store

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

func TestInstrumentedStoreRecordsOperations(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	s := NewInstrumentedStore(NewMemoryStore(10, time.Minute), "memory_index", m)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "v"))
	value, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)
	require.NoError(t, s.Remove(ctx, "k"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("put", "memory_index", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("get", "memory_index", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("remove", "memory_index", "ok")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("put", "memory_index")))
}

func TestInstrumentedStoreRecordsErrors(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	s := NewInstrumentedStore(failingStore{}, "redis_index", m)

	_, _, err := s.Get(context.Background(), "k")
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("get", "redis_index", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("get", "redis_index")))
}

func TestInstrumentedStoreNilMetricsPassthrough(t *testing.T) {
	inner := NewMemoryStore(10, time.Minute)
	assert.Same(t, Store(inner), NewInstrumentedStore(inner, "memory", nil))
}
