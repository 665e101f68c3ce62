package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/profile"
)

func TestTokenCredentialsClear(t *testing.T) {
	c := NewToken("ST-1234")
	c.SetSource("cas-corp")
	c.SetProfile(profile.New("CasProfile", "alice"))

	assert.Equal(t, "ST-1234", c.Token())
	require.NotNil(t, c.Profile())

	c.Clear()

	assert.Empty(t, c.Token())
	assert.Nil(t, c.Profile())
	// the source is not a secret
	assert.Equal(t, "cas-corp", c.Source())

	// idempotent
	c.Clear()
	assert.Empty(t, c.Token())
}

func TestUsernamePasswordClearKeepsUsername(t *testing.T) {
	c := NewUsernamePassword("alice", "hunter2")
	c.Clear()

	assert.Equal(t, "alice", c.Username())
	assert.Empty(t, c.Password())
}

func TestSessionKeyCredentialsClear(t *testing.T) {
	c := NewSessionKey("sid-7")
	assert.Equal(t, "sid-7", c.SessionKey())

	c.Clear()
	assert.Empty(t, c.SessionKey())
}

func TestOAuthCredentialsClear(t *testing.T) {
	c := NewOAuth("access", "secret")
	c.Clear()

	assert.Empty(t, c.AccessToken())
	assert.Empty(t, c.TokenSecret())
}

func TestClearScrubsAttachedProfile(t *testing.T) {
	p := profile.New("OidcProfile", "alice")
	p.SetAttribute("email", "alice@example.org")

	c := NewToken("tok")
	c.SetProfile(p)
	c.Clear()

	// the profile itself was scrubbed, not just detached
	assert.Empty(t, p.Attributes)
	assert.Nil(t, c.Profile())
}

func TestEqual(t *testing.T) {
	assert.True(t, NewToken("a").Equal(NewToken("a")))
	assert.False(t, NewToken("a").Equal(NewToken("b")))

	// equality compares the constructor-supplied value even after Clear
	a := NewToken("a")
	a.Clear()
	assert.False(t, a.Equal(NewToken("a")))

	assert.True(t, NewUsernamePassword("u", "p").Equal(NewUsernamePassword("u", "p")))
	assert.False(t, NewUsernamePassword("u", "p").Equal(NewUsernamePassword("u", "x")))

	assert.True(t, NewSessionKey("s").Equal(NewSessionKey("s")))
	assert.True(t, NewAnonymous().Equal(NewAnonymous()))

	var nilToken *TokenCredentials
	assert.False(t, NewToken("a").Equal(nilToken))
	assert.True(t, nilToken.Equal(nil))
}

func TestTypeMismatchError(t *testing.T) {
	err := &TypeMismatchError{Expected: "SessionKeyCredentials", Actual: "TokenCredentials"}
	assert.Equal(t, "expected SessionKeyCredentials credentials, got TokenCredentials", err.Error())
}

func TestCredentialsInterfaceCompliance(t *testing.T) {
	for name, c := range map[string]Credentials{
		"token":             NewToken("t"),
		"username_password": NewUsernamePassword("u", "p"),
		"session_key":       NewSessionKey("s"),
		"oauth":             NewOAuth("a", "s"),
		"anonymous":         NewAnonymous(),
	} {
		t.Run(name, func(t *testing.T) {
			c.SetSource("client")
			assert.Equal(t, "client", c.Source())
			c.SetProfile(profile.New("P", "id"))
			c.Clear()
			assert.Nil(t, c.Profile())
		})
	}
}
