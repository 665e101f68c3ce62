// Package state produces and validates the opaque anti-forgery token
// round-tripped through an identity provider.
//
// # Overview
//
// An indirect login starts by generating a token (OAuth "state", SAML
// "RelayState") bound to the current browser session, persisting it through
// the session store, and embedding it in the outbound redirect. On callback
// the returned token is compared constant-time against the persisted one and
// consumed: a token validates successfully exactly once, so a replayed
// callback fails with InvalidStateError.
//
// The generator and the validator are deliberately separate. Generation is a
// pure policy (fixed operator value or crypto/rand); persistence and
// single-use validation belong to the indirect-client flow that owns the
// session round trip.
package state
