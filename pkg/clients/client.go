package clients

import (
	"fmt"
	"sort"
	"sync"
)

// Protocol identifies the authentication protocol a client speaks.
type Protocol string

const (
	ProtocolOIDC   Protocol = "oidc"
	ProtocolSAML   Protocol = "saml"
	ProtocolOAuth2 Protocol = "oauth2"
)

// Client is one configured way to authenticate a user.
type Client interface {
	// Name returns the unique client name, used as the profile's
	// ClientName and for logout session tracking.
	Name() string

	// Protocol returns the protocol this client speaks.
	Protocol() Protocol

	// Direct reports whether the client authenticates each request from
	// credentials it carries itself, with no redirect round trip. All
	// clients in this package are indirect.
	Direct() bool
}

// Registry holds the active clients of an application. The active client
// list feeds the profile storage strategy, which may decide differently
// for a mix of direct and indirect clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client. Registering a second client under the same name
// is a configuration mistake and fails.
func (r *Registry) Register(c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.Name()]; exists {
		return fmt.Errorf("client %q already registered", c.Name())
	}
	r.clients[c.Name()] = c
	return nil
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	return c, ok
}

// Names returns the registered client names in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
