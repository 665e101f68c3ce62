package webctx

import (
	"net/http"
)

// HTTPContext adapts a net/http request/response pair to WebContext.
type HTTPContext struct {
	w        http.ResponseWriter
	r        *http.Request
	sessions SessionStore
	set      map[string]string
}

// NewHTTPContext wraps a net/http exchange. The session store is shared
// process state (typically a MemorySessionStore or a framework adapter);
// the context only binds it to this request.
func NewHTTPContext(w http.ResponseWriter, r *http.Request, sessions SessionStore) *HTTPContext {
	return &HTTPContext{w: w, r: r, sessions: sessions, set: make(map[string]string)}
}

// SessionStore returns the session store bound to this request.
func (c *HTTPContext) SessionStore() SessionStore {
	return c.sessions
}

// SetResponseHeader sets a header on the outgoing response.
func (c *HTTPContext) SetResponseHeader(name, value string) {
	c.w.Header().Set(name, value)
}

// RemoteAddr returns the remote address of the user agent.
func (c *HTTPContext) RemoteAddr() string {
	return c.r.RemoteAddr
}

// Request exposes the underlying request for adapters that need it.
func (c *HTTPContext) Request() *http.Request {
	return c.r
}

// Cookie returns the value of a request cookie. Cookies set earlier in the
// same exchange win over the request's own, so a session created while
// handling a request is visible for the rest of that request.
func (c *HTTPContext) Cookie(name string) (string, bool) {
	if value, ok := c.set[name]; ok {
		return value, value != ""
	}
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// SetCookie sets a response cookie. Negative maxAge deletes the cookie.
func (c *HTTPContext) SetCookie(name, value string, maxAge int) {
	if maxAge < 0 {
		value = ""
	}
	c.set[name] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// CookieAccess is the optional capability session stores use to track the
// session identifier through a cookie. HTTPContext implements it.
type CookieAccess interface {
	Cookie(name string) (string, bool)
	SetCookie(name, value string, maxAge int)
}
