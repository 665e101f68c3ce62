// Package replay rejects re-submission of one-time authentication artifacts.
//
// # Overview
//
// SAML assertion IDs, OIDC nonces and similar one-time artifacts must be
// accepted at most once within their validity window. The Guard records
// consumed identifiers with an expiry; the Checker wraps the seen/remember
// sequence into a single call that fails with ReplayDetectedError on a
// repeat.
//
// Protection is time-bounded, not an audit log: after an artifact's own
// validity window has passed, the entry may be evicted and a repeat is no
// longer detectable. That is safe because the protocol layer has already
// rejected the artifact as expired by then.
//
// # Backends
//
// MemoryGuard is an in-process cache and is explicitly unsafe across
// multiple server instances sharing one identity-provider session; use
// RedisGuard in clustered deployments.
package replay
