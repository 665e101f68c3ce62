package webctx

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie used by MemorySessionStore to track the
// session identifier.
const SessionCookieName = "gatehouse_session"

const sessionCookieMaxAge = 4 * 3600 // seconds

// MemorySessionStore keeps session values in process memory, keyed by a
// uuid session identifier tracked through a cookie. Suitable for tests and
// single-instance deployments; clustered hosts bring their own store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]interface{}

	// OnCreate and OnDestroy observe the session lifecycle, e.g. for gauge
	// metrics. Both are optional and must be set before the store serves
	// requests.
	OnCreate  func()
	OnDestroy func()
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]map[string]interface{}),
	}
}

// SessionID returns the session bound to the request cookie, creating a new
// session when create is true and none exists.
func (s *MemorySessionStore) SessionID(ctx WebContext, create bool) (string, bool) {
	cookies, ok := ctx.(CookieAccess)
	if !ok {
		return "", false
	}

	if id, ok := cookies.Cookie(SessionCookieName); ok {
		s.mu.RLock()
		_, live := s.sessions[id]
		s.mu.RUnlock()
		if live {
			return id, true
		}
	}

	if !create {
		return "", false
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = make(map[string]interface{})
	s.mu.Unlock()
	cookies.SetCookie(SessionCookieName, id, sessionCookieMaxAge)
	if s.OnCreate != nil {
		s.OnCreate()
	}
	return id, true
}

// Get returns the value stored under key in the current session.
func (s *MemorySessionStore) Get(ctx WebContext, key string) (interface{}, bool) {
	id, ok := s.SessionID(ctx, false)
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	value, ok := values[key]
	return value, ok
}

// Set stores value under key in the current session, creating the session
// if needed. A nil value removes the entry.
func (s *MemorySessionStore) Set(ctx WebContext, key string, value interface{}) {
	id, ok := s.SessionID(ctx, true)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sessions[id]
	if !ok {
		return
	}
	if value == nil {
		delete(values, key)
		return
	}
	values[key] = value
}

// Destroy terminates the current session and clears the tracking cookie.
func (s *MemorySessionStore) Destroy(ctx WebContext) error {
	id, ok := s.SessionID(ctx, false)
	if !ok {
		return nil
	}
	if err := s.DestroyByID(id); err != nil {
		return err
	}
	if cookies, ok := ctx.(CookieAccess); ok {
		cookies.SetCookie(SessionCookieName, "", -1)
	}
	return nil
}

// DestroyByID terminates the session with the given identifier. Used by the
// logout processor, which resolves sessions from an index rather than from
// the current request.
func (s *MemorySessionStore) DestroyByID(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("session %s not found", id)
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.OnDestroy != nil {
		s.OnDestroy()
	}
	return nil
}

// Len returns the number of live sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
