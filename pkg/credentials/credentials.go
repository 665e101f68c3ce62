package credentials

import (
	"fmt"

	"github.com/gatehouse-auth/gatehouse/pkg/profile"
)

// Clearable is the capability every secret-bearing type implements.
type Clearable interface {
	// Clear irreversibly empties every secret field. Idempotent.
	Clear()
}

// Credentials is the contract shared by all credential variants.
type Credentials interface {
	Clearable

	// Source returns the name of the client this credential originated
	// from, or "" when unknown.
	Source() string

	// SetSource records the originating client name.
	SetSource(clientName string)

	// Profile returns the authenticated profile attached by the
	// profile-creation step, or nil before it ran or after Clear.
	Profile() *profile.Profile

	// SetProfile attaches the authenticated profile.
	SetProfile(p *profile.Profile)
}

// TypeMismatchError reports that a handler received the wrong credential
// variant. This is an integration error: the protocol layer classifies the
// payload before dispatching, so a mismatch is a bug, fatal and not retried.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s credentials, got %s", e.Expected, e.Actual)
}

// base carries the fields common to every variant.
type base struct {
	source      string
	userProfile *profile.Profile
}

func (b *base) Source() string {
	return b.source
}

func (b *base) SetSource(clientName string) {
	b.source = clientName
}

func (b *base) Profile() *profile.Profile {
	return b.userProfile
}

func (b *base) SetProfile(p *profile.Profile) {
	b.userProfile = p
}

// clearProfile recursively clears and detaches the profile.
func (b *base) clearProfile() {
	if b.userProfile != nil {
		b.userProfile.Clear()
		b.userProfile = nil
	}
}
