// Package profile holds the authenticated identity record produced by a
// successful authentication and shared with the session layer afterwards.
package profile

import (
	"fmt"
	"strings"
)

// Separator joins the profile type name and the provider-issued identifier
// into the typed ID.
const Separator = "#"

// Profile is an identity record keyed by a provider-qualified typed
// identifier. It is exclusively owned by the credentials that produced it
// until handed to the storage layer; after storage it is shared by
// reference with the session.
type Profile struct {
	Type        string                 `json:"type"`
	ID          string                 `json:"id"`
	ClientName  string                 `json:"client_name,omitempty"`
	Attributes  map[string]interface{} `json:"attributes"`
	Roles       map[string]bool        `json:"roles,omitempty"`
	Permissions map[string]bool        `json:"permissions,omitempty"`
}

// New creates a profile of the given type for the provider-issued id.
func New(profileType, id string) *Profile {
	return &Profile{
		Type:        profileType,
		ID:          id,
		Attributes:  make(map[string]interface{}),
		Roles:       make(map[string]bool),
		Permissions: make(map[string]bool),
	}
}

// TypedID returns the provider-qualified identifier, e.g. "OIDCProfile#42".
func (p *Profile) TypedID() string {
	return p.Type + Separator + p.ID
}

// ParseTypedID splits a typed identifier into its type and id parts.
func ParseTypedID(typedID string) (profileType, id string, err error) {
	parts := strings.SplitN(typedID, Separator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed typed profile ID %q", typedID)
	}
	return parts[0], parts[1], nil
}

// Attribute returns the named attribute, or ok=false when absent.
func (p *Profile) Attribute(name string) (interface{}, bool) {
	value, ok := p.Attributes[name]
	return value, ok
}

// SetAttribute stores an attribute. Insertion order is irrelevant.
func (p *Profile) SetAttribute(name string, value interface{}) {
	if p.Attributes == nil {
		p.Attributes = make(map[string]interface{})
	}
	p.Attributes[name] = value
}

// AddRole grants a role.
func (p *Profile) AddRole(role string) {
	if p.Roles == nil {
		p.Roles = make(map[string]bool)
	}
	p.Roles[role] = true
}

// HasRole reports whether the profile carries the role.
func (p *Profile) HasRole(role string) bool {
	return p.Roles[role]
}

// AddPermission grants a permission.
func (p *Profile) AddPermission(permission string) {
	if p.Permissions == nil {
		p.Permissions = make(map[string]bool)
	}
	p.Permissions[permission] = true
}

// HasPermission reports whether the profile carries the permission.
func (p *Profile) HasPermission(permission string) bool {
	return p.Permissions[permission]
}

// Equal reports whether two profiles identify the same principal.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Type == other.Type && p.ID == other.ID
}

// Clear irreversibly empties every attribute, role and permission. The
// identifier itself is not a secret and survives for audit logging. Calling
// Clear twice is idempotent.
func (p *Profile) Clear() {
	p.Attributes = make(map[string]interface{})
	p.Roles = make(map[string]bool)
	p.Permissions = make(map[string]bool)
}
