package store

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

type countingStore struct {
	MemoryStore
	sweeps atomic.Int64
}

func (s *countingStore) CleanUp(context.Context) error {
	s.sweeps.Add(1)
	return nil
}

func TestReaperRunsCleanUp(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	s := &countingStore{MemoryStore: *NewMemoryStore(4, time.Minute)}

	r := NewReaper(s, "@every 100ms", logger)
	require.NoError(t, r.Start())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return s.sweeps.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestReaperInvalidSchedule(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	r := NewReaper(NewMemoryStore(4, time.Minute), "not a schedule", logger)

	assert.Error(t, r.Start())
}
