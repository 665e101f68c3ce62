package logout

import (
	"context"
	"fmt"

	"github.com/gatehouse-auth/gatehouse/pkg/credentials"
	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/store"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// SessionTerminator destroys a session resolved from the logout index,
// which is generally not the session of the current request.
// webctx.MemorySessionStore implements it; clustered session layers bring
// their own.
type SessionTerminator interface {
	DestroyByID(sessionID string) error
}

// Processor handles identity-provider-initiated logout notifications.
type Processor struct {
	index    store.Store
	sessions SessionTerminator
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewProcessor creates a logout processor over the given index store and
// session terminator. Metrics may be nil.
func NewProcessor(index store.Store, sessions SessionTerminator, logger *observability.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{
		index:    index,
		sessions: sessions,
		logger:   logger.WithField("component", "logout_processor"),
		metrics:  metrics,
	}
}

// TrackSession records the provider session key -> local session mapping at
// login time, so a later logout notification can find the session.
func (p *Processor) TrackSession(ctx context.Context, providerSessionKey, localSessionID string) error {
	if providerSessionKey == "" || localSessionID == "" {
		return fmt.Errorf("logout: session key and session ID are required")
	}
	return p.index.Put(ctx, providerSessionKey, localSessionID)
}

// ProcessLogout runs the logout state machine for one notification.
//
// The credentials must be the session-key variant; anything else fails with
// TypeMismatchError before any store is touched, since this is the terminal
// handler and not a dispatcher. An index miss is acknowledged as success: the
// session may legitimately be gone already, and the provider ignores
// processor errors in front-channel flows. Store unavailability, by
// contrast, is surfaced.
func (p *Processor) ProcessLogout(ctx context.Context, web webctx.WebContext, creds credentials.Credentials) (webctx.HttpAction, error) {
	sessionKeyCreds, ok := creds.(*credentials.SessionKeyCredentials)
	if !ok {
		return webctx.HttpAction{}, &credentials.TypeMismatchError{
			Expected: "session-key",
			Actual:   fmt.Sprintf("%T", creds),
		}
	}

	sessionKey := sessionKeyCreds.SessionKey()
	logger := p.logger.WithField("session_key", sessionKey)

	localSessionID, found, err := p.index.Get(ctx, sessionKey)
	if err != nil {
		return webctx.HttpAction{}, fmt.Errorf("logout index lookup failed: %w", err)
	}

	if !found {
		// Idempotent path: already terminated or never tracked.
		logger.Debug("no session tracked for logout notification")
		p.count("index_miss")
		return p.acknowledge(web), nil
	}

	if err := p.sessions.DestroyByID(localSessionID); err != nil {
		// The session can vanish between lookup and destruction; the
		// front-channel response stays a success either way.
		logger.WithError(err).Debug("session already terminated")
	}

	if err := p.index.Remove(ctx, sessionKey); err != nil {
		return webctx.HttpAction{}, fmt.Errorf("failed to remove logout index entry: %w", err)
	}

	logger.WithField("session_id", localSessionID).Info("session terminated by provider logout")
	p.count("terminated")
	return p.acknowledge(web), nil
}

// acknowledge produces the empty-body OK with caching forbidden: the
// acknowledgement must never be replayed out of a cache.
func (p *Processor) acknowledge(web webctx.WebContext) webctx.HttpAction {
	web.SetResponseHeader("Cache-Control", "no-cache, no-store")
	web.SetResponseHeader("Pragma", "no-cache")
	return webctx.OK("")
}

func (p *Processor) count(outcome string) {
	if p.metrics != nil {
		p.metrics.LogoutTotal.WithLabelValues(outcome).Inc()
	}
}
