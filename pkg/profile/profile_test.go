package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedIDRoundTrip(t *testing.T) {
	p := New("OidcProfile", "alice")
	assert.Equal(t, "OidcProfile#alice", p.TypedID())

	profileType, id, err := ParseTypedID(p.TypedID())
	require.NoError(t, err)
	assert.Equal(t, "OidcProfile", profileType)
	assert.Equal(t, "alice", id)
}

func TestParseTypedIDKeepsSeparatorInID(t *testing.T) {
	// only the first separator splits; the id may contain more
	profileType, id, err := ParseTypedID("SAML2Profile#urn:user#42")
	require.NoError(t, err)
	assert.Equal(t, "SAML2Profile", profileType)
	assert.Equal(t, "urn:user#42", id)
}

func TestParseTypedIDMalformed(t *testing.T) {
	for _, typedID := range []string{"", "noseparator", "#id", "Type#", "#"} {
		_, _, err := ParseTypedID(typedID)
		assert.Error(t, err, "typed ID %q should be rejected", typedID)
	}
}

func TestAttributes(t *testing.T) {
	p := New("OidcProfile", "alice")

	_, ok := p.Attribute("email")
	assert.False(t, ok)

	p.SetAttribute("email", "alice@example.org")
	value, ok := p.Attribute("email")
	require.True(t, ok)
	assert.Equal(t, "alice@example.org", value)

	// nil maps are repaired on write
	p.Attributes = nil
	p.SetAttribute("email", "alice@example.org")
	_, ok = p.Attribute("email")
	assert.True(t, ok)
}

func TestRolesAndPermissions(t *testing.T) {
	p := New("OidcProfile", "alice")

	assert.False(t, p.HasRole("admin"))
	p.AddRole("admin")
	assert.True(t, p.HasRole("admin"))

	assert.False(t, p.HasPermission("orders:read"))
	p.AddPermission("orders:read")
	assert.True(t, p.HasPermission("orders:read"))
}

func TestEqual(t *testing.T) {
	a := New("OidcProfile", "alice")
	b := New("OidcProfile", "alice")
	b.SetAttribute("email", "alice@example.org")

	// attributes do not affect identity
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(New("OidcProfile", "bob")))
	assert.False(t, a.Equal(New("SAML2Profile", "alice")))

	var nilProfile *Profile
	assert.False(t, a.Equal(nilProfile))
	assert.True(t, nilProfile.Equal(nil))
}

func TestClear(t *testing.T) {
	p := New("OidcProfile", "alice")
	p.ClientName = "corp-oidc"
	p.SetAttribute("email", "alice@example.org")
	p.AddRole("admin")
	p.AddPermission("orders:read")

	p.Clear()

	assert.Empty(t, p.Attributes)
	assert.Empty(t, p.Roles)
	assert.Empty(t, p.Permissions)

	// identity survives for audit logging
	assert.Equal(t, "OidcProfile#alice", p.TypedID())
	assert.Equal(t, "corp-oidc", p.ClientName)

	// idempotent
	p.Clear()
	assert.Empty(t, p.Attributes)
}
