// Package strategy decides, per request and per client mix, whether
// authenticated profiles are read from and written to the session.
package strategy

import (
	"github.com/gatehouse-auth/gatehouse/pkg/profile"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// Strategy is a pure decision function. It must not touch the session
// store itself; all I/O is performed by the caller using the boolean
// result. Decisions are evaluated on every request, never cached, because
// the active client list can change between requests to the same path.
type Strategy interface {
	// MustLoadFromSession reports whether the profile for this request is
	// to be read from the session.
	MustLoadFromSession(ctx webctx.WebContext, activeClients []string) bool

	// MustSaveToSession reports whether a freshly created profile is to
	// be written to the session. directClient is true when the profile was
	// produced by a stateless direct client.
	MustSaveToSession(ctx webctx.WebContext, activeClients []string, directClient bool, p *profile.Profile) bool
}

// AlwaysSession keeps profiles in the session unconditionally. The right
// choice when indirect and direct clients are mixed in one application: a
// profile established by a browser redirect must be visible to later
// requests carrying no credentials of their own.
type AlwaysSession struct{}

func (AlwaysSession) MustLoadFromSession(webctx.WebContext, []string) bool {
	return true
}

func (AlwaysSession) MustSaveToSession(webctx.WebContext, []string, bool, *profile.Profile) bool {
	return true
}

// NeverSession handles every request statelessly. For pure APIs where each
// request carries its own credentials.
type NeverSession struct{}

func (NeverSession) MustLoadFromSession(webctx.WebContext, []string) bool {
	return false
}

func (NeverSession) MustSaveToSession(webctx.WebContext, []string, bool, *profile.Profile) bool {
	return false
}

// Func adapts two plain functions into a Strategy for custom policies.
type Func struct {
	Load func(ctx webctx.WebContext, activeClients []string) bool
	Save func(ctx webctx.WebContext, activeClients []string, directClient bool, p *profile.Profile) bool
}

func (f Func) MustLoadFromSession(ctx webctx.WebContext, activeClients []string) bool {
	if f.Load == nil {
		return false
	}
	return f.Load(ctx, activeClients)
}

func (f Func) MustSaveToSession(ctx webctx.WebContext, activeClients []string, directClient bool, p *profile.Profile) bool {
	if f.Save == nil {
		return false
	}
	return f.Save(ctx, activeClients, directClient, p)
}
