package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

// Guard records consumed one-time artifact identifiers with an expiry.
// Implementations must be safe for concurrent use; the guard is a process-
// or cluster-wide singleton, never locked externally.
type Guard interface {
	// Seen reports whether id was remembered and has not yet expired.
	Seen(ctx context.Context, id string) (bool, error)

	// Remember records id for ttl. The ttl should be the artifact's own
	// validity window.
	Remember(ctx context.Context, id string, ttl time.Duration) error
}

// OnceGuard is the optional atomic capability: RememberOnce records id and
// reports whether it was fresh in a single operation, closing the window
// between Seen and Remember. Both built-in guards implement it.
type OnceGuard interface {
	RememberOnce(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// ReplayDetectedError reports a re-submitted one-time artifact. This is a
// security incident, fatal to the authentication attempt, and is logged
// distinctly from ordinary failures.
type ReplayDetectedError struct {
	ID string
}

func (e *ReplayDetectedError) Error() string {
	return fmt.Sprintf("replay detected for artifact %q", e.ID)
}

// Checker performs the check-then-record sequence for one-time artifacts.
type Checker struct {
	guard   Guard
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewChecker creates a checker over the given guard. Metrics may be nil.
func NewChecker(guard Guard, logger *observability.Logger, metrics *observability.Metrics) *Checker {
	return &Checker{
		guard:   guard,
		logger:  logger.WithField("component", "replay_checker"),
		metrics: metrics,
	}
}

// Check accepts id exactly once within ttl. A repeat fails with
// ReplayDetectedError; the artifact must then be rejected outright, never
// retried.
func (c *Checker) Check(ctx context.Context, id string, ttl time.Duration) error {
	if once, ok := c.guard.(OnceGuard); ok {
		fresh, err := once.RememberOnce(ctx, id, ttl)
		if err != nil {
			return err
		}
		if !fresh {
			return c.detected(id)
		}
		return nil
	}

	seen, err := c.guard.Seen(ctx, id)
	if err != nil {
		return err
	}
	if seen {
		return c.detected(id)
	}
	return c.guard.Remember(ctx, id, ttl)
}

func (c *Checker) detected(id string) error {
	c.logger.WithField("artifact_id", id).Warn("replayed authentication artifact rejected")
	if c.metrics != nil {
		c.metrics.ReplayDetectionsTotal.Inc()
	}
	return &ReplayDetectedError{ID: id}
}
