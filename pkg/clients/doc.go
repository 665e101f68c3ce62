// Package clients provides the authentication clients that drive the
// security core end to end.
//
// # Overview
//
// A Client represents one way for a user to authenticate: an OpenID Connect
// provider, a SAML identity provider, or a plain OAuth 2.0 authorization
// server. Indirect clients redirect the user agent to the provider and
// finish authentication on a callback; every indirect client runs the
// anti-forgery state round trip and, where the protocol issues one-time
// artifacts, the replay guard.
//
// # Usage
//
// Register clients once at startup:
//
//	registry := clients.NewRegistry()
//	registry.Register(oidcClient)
//	registry.Register(samlClient)
//
// Drive a login:
//
//	url, err := oidcClient.LoginURL(ctx, web)
//	// redirect the user agent to url
//
// Finish it on the callback:
//
//	profile, err := oidcClient.Callback(ctx, web, r.URL.Query())
//
// # Related Packages
//
//   - pkg/state: anti-forgery token generation and validation
//   - pkg/replay: one-time artifact replay detection
//   - pkg/profile: the authenticated user representation clients produce
//   - pkg/logout: session tracking for provider-initiated logout
package clients
