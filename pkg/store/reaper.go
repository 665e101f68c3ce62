package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

// Reaper runs Store.CleanUp on a cron schedule. The built-in backends evict
// by TTL and do not need one; it exists for custom backends whose CleanUp
// actually sweeps.
type Reaper struct {
	store    Store
	schedule string
	logger   *observability.Logger
	cron     *cron.Cron
}

// NewReaper creates a reaper for the given store. The schedule uses
// standard cron syntax, e.g. "@every 10m".
func NewReaper(s Store, schedule string, logger *observability.Logger) *Reaper {
	return &Reaper{
		store:    s,
		schedule: schedule,
		logger:   logger.WithField("component", "store_reaper"),
		cron:     cron.New(),
	}
}

// Start begins the schedule. Returns an error for an invalid expression.
func (r *Reaper) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		defer observability.RecoverPanic(r.logger, "store cleanup")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.store.CleanUp(ctx); err != nil {
			r.logger.WithError(err).Warn("store cleanup failed")
			return
		}
		r.logger.Debug("store cleanup complete")
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}
