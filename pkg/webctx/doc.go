// Package webctx defines the neutral web boundary consumed by the security core.
//
// # Overview
//
// The core never touches a framework request or response directly. Everything
// it needs from the transport layer is expressed through two small contracts:
//
//	WebContext:    session access, response headers, remote address
//	SessionStore:  per-session key/value access and session destruction
//
// An adapter for net/http is provided (NewHTTPContext) along with an
// in-memory SessionStore suitable for tests and single-instance deployments.
// Host frameworks supply their own implementations; the core only calls the
// interfaces.
//
// # HttpAction
//
// Components that terminate a request (e.g. the logout processor) return an
// HttpAction value instead of writing to the response themselves. The caller
// decides how to materialize it: WriteTo(w) does the obvious thing for
// net/http.
//
// # Related Packages
//
//   - pkg/state: persists anti-forgery tokens through SessionStore
//   - pkg/logout: destroys sessions and emits HttpActions
package webctx
