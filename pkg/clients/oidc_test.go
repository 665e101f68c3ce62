package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/replay"
	"github.com/gatehouse-auth/gatehouse/pkg/state"
)

func validOIDCTestConfig() OIDCConfig {
	return OIDCConfig{
		Name:         "oidc-test",
		IssuerURL:    "https://provider.example.com",
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		RedirectURL:  "https://rp.example.com/callback",
		Scopes:       []string{"openid", "profile", "email"},
	}
}

func TestValidateOIDCConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*OIDCConfig)
		errorMsg string
	}{
		{"missing name", func(c *OIDCConfig) { c.Name = "" }, "client name is required"},
		{"missing client_id", func(c *OIDCConfig) { c.ClientID = "" }, "client_id is required"},
		{"missing client_secret", func(c *OIDCConfig) { c.ClientSecret = "" }, "client_secret is required"},
		{"missing issuer_url", func(c *OIDCConfig) { c.IssuerURL = "" }, "issuer_url is required"},
		{"missing redirect_url", func(c *OIDCConfig) { c.RedirectURL = "" }, "redirect_url is required"},
		{"missing scopes", func(c *OIDCConfig) { c.Scopes = nil }, "'openid' scope is required"},
		{"missing openid scope", func(c *OIDCConfig) { c.Scopes = []string{"profile", "email"} }, "'openid' scope is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validOIDCTestConfig()
			tt.mutate(&config)

			err := validateOIDCConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}

	assert.NoError(t, validateOIDCConfig(validOIDCTestConfig()))
}

// nonce checking needs no live provider; build the client directly.
func newNonceTestClient(t *testing.T) *OIDCClient {
	t.Helper()
	config := validOIDCTestConfig()
	config.NonceTTL = time.Minute
	return &OIDCClient{
		config:    config,
		generator: state.NewRandomGenerator(0),
		validator: state.NewValidator(0, testLogger(), nil),
		checker:   replay.NewChecker(replay.NewMemoryGuard(nil), testLogger(), nil),
	}
}

func TestCheckNonceHappyPath(t *testing.T) {
	client := newNonceTestClient(t)
	web := newTestWebContext(t)

	web.SessionStore().Set(web, NonceSessionKey, "nonce-1")
	require.NoError(t, client.checkNonce(context.Background(), web, "nonce-1"))

	// session copy is consumed
	_, ok := web.SessionStore().Get(web, NonceSessionKey)
	assert.False(t, ok)
}

func TestCheckNonceMismatch(t *testing.T) {
	client := newNonceTestClient(t)
	web := newTestWebContext(t)

	web.SessionStore().Set(web, NonceSessionKey, "nonce-1")
	err := client.checkNonce(context.Background(), web, "nonce-other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestCheckNonceMissing(t *testing.T) {
	client := newNonceTestClient(t)
	web := newTestWebContext(t)

	err := client.checkNonce(context.Background(), web, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing nonce")

	// no pending nonce in the session at all
	err = client.checkNonce(context.Background(), web, "nonce-1")
	require.Error(t, err)
}

func TestCheckNonceReplay(t *testing.T) {
	client := newNonceTestClient(t)
	web := newTestWebContext(t)

	web.SessionStore().Set(web, NonceSessionKey, "nonce-1")
	require.NoError(t, client.checkNonce(context.Background(), web, "nonce-1"))

	// an attacker who captured the ID token replays it with the nonce
	// planted back into a session
	other := newTestWebContext(t)
	other.SessionStore().Set(other, NonceSessionKey, "nonce-1")

	var replayErr *replay.ReplayDetectedError
	err := client.checkNonce(context.Background(), other, "nonce-1")
	require.ErrorAs(t, err, &replayErr)
	assert.Equal(t, "nonce-1", replayErr.ID)
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, stringSlice([]interface{}{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, stringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"admin"}, stringSlice("admin"))
	assert.Nil(t, stringSlice(""))
	assert.Nil(t, stringSlice(nil))
	assert.Nil(t, stringSlice(42))

	// non-string members are skipped, not coerced
	assert.Equal(t, []string{"a"}, stringSlice([]interface{}{"a", 1}))
}
