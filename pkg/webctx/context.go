package webctx

// WebContext is the request-scoped view the security core gets of the host
// web layer. Implementations wrap a framework request/response pair.
type WebContext interface {
	// SessionStore returns the session store bound to this request.
	SessionStore() SessionStore

	// SetResponseHeader sets a header on the outgoing response.
	SetResponseHeader(name, value string)

	// RemoteAddr returns the remote address of the user agent.
	RemoteAddr() string
}

// SessionStore provides per-session key/value access. Per-session access is
// serialized by the host; implementations only need to be safe for
// concurrent use across different sessions.
type SessionStore interface {
	// SessionID returns the identifier of the current session, creating the
	// session first when create is true and none exists yet. The second
	// return is false when no session exists and create was false.
	SessionID(ctx WebContext, create bool) (string, bool)

	// Get returns the value stored under key, or ok=false when absent.
	Get(ctx WebContext, key string) (interface{}, bool)

	// Set stores value under key. A nil value removes the entry.
	Set(ctx WebContext, key string, value interface{})

	// Destroy terminates the current session and discards its values.
	Destroy(ctx WebContext) error
}
