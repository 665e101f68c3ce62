package state

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// SessionKey is the well-known session key the persisted token lives under.
const SessionKey = "gatehouse.state"

// DefaultTTL bounds how long a persisted token stays valid. Login redirects
// resolve in seconds; minutes of slack cover slow providers and users.
const DefaultTTL = 10 * time.Minute

// InvalidStateError reports a state mismatch, absence, or expiry. Always
// fatal to the current authentication attempt; never retried.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

// Entry is the persisted token together with its expiry. Exported fields so
// serializing session stores can round-trip it.
type Entry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validator persists generated tokens into the session and validates the
// token presented on callback. A token is consumed by its first successful
// validation.
type Validator struct {
	ttl     time.Duration
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewValidator creates a validator. Zero ttl means DefaultTTL; metrics may
// be nil.
func NewValidator(ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Validator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Validator{
		ttl:     ttl,
		logger:  logger.WithField("component", "state_validator"),
		metrics: metrics,
	}
}

// Persist stores token under the well-known session key with an expiry of
// now + ttl. Only one token is live per session at a time; a new login
// round overwrites the previous token (last writer wins).
func (v *Validator) Persist(ctx webctx.WebContext, token string) {
	ctx.SessionStore().Set(ctx, SessionKey, Entry{
		Token:     token,
		ExpiresAt: time.Now().Add(v.ttl),
	})
}

// Validate compares presented against the persisted token. On success the
// persisted token is deleted, so a second presentation of the same token
// fails. All failure modes return InvalidStateError; callers must not leak
// which specific check failed to the user agent.
func (v *Validator) Validate(ctx webctx.WebContext, presented string) error {
	session := ctx.SessionStore()

	raw, ok := session.Get(ctx, SessionKey)
	if !ok {
		return v.fail("no persisted state for session")
	}

	entry, ok := raw.(Entry)
	if !ok {
		return v.fail("persisted state has unexpected type")
	}

	if time.Now().After(entry.ExpiresAt) {
		session.Set(ctx, SessionKey, nil)
		return v.fail("persisted state expired")
	}

	if subtle.ConstantTimeCompare([]byte(entry.Token), []byte(presented)) != 1 {
		return v.fail("state mismatch")
	}

	// Consumed: a replayed callback with the same token must fail.
	session.Set(ctx, SessionKey, nil)
	if v.metrics != nil {
		v.metrics.StateValidationsTotal.WithLabelValues("ok").Inc()
	}
	return nil
}

func (v *Validator) fail(reason string) error {
	v.logger.WithField("reason", reason).Info("state validation failed")
	if v.metrics != nil {
		v.metrics.StateValidationsTotal.WithLabelValues("invalid").Inc()
	}
	return &InvalidStateError{Reason: reason}
}
