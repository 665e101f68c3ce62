package state

import (
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// RelaySessionKey is the session key the stored RelayState lives under.
const RelaySessionKey = "gatehouse.relayState"

// RelayResolver handles the SAML RelayState value. Unlike the pure
// anti-forgery token, RelayState carries return-routing information: where
// to send the user agent once the callback completes.
type RelayResolver struct {
	// CallbackURL is returned when no RelayState was stored, e.g. for an
	// IdP-initiated flow that never passed through the login endpoint.
	CallbackURL string
}

// NewRelayResolver creates a resolver falling back to callbackURL.
func NewRelayResolver(callbackURL string) *RelayResolver {
	return &RelayResolver{CallbackURL: callbackURL}
}

// Store saves the RelayState for the current session.
func (r *RelayResolver) Store(ctx webctx.WebContext, relayState string) {
	ctx.SessionStore().Set(ctx, RelaySessionKey, relayState)
}

// Resolve returns the stored RelayState and clears it, or the configured
// callback URL when none was stored.
func (r *RelayResolver) Resolve(ctx webctx.WebContext) string {
	session := ctx.SessionStore()
	if raw, ok := session.Get(ctx, RelaySessionKey); ok {
		session.Set(ctx, RelaySessionKey, nil)
		if value, ok := raw.(string); ok && value != "" {
			return value
		}
	}
	return r.CallbackURL
}
