package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/state"
)

// fakeProvider is a minimal OAuth2 authorization server: a token endpoint
// and a userinfo endpoint.
func fakeProvider(t *testing.T, userInfo map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			http.Error(w, "invalid_grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at-123",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newOAuth2TestClient(t *testing.T, server *httptest.Server, generator state.Generator) *OAuth2Client {
	t.Helper()
	client, err := NewOAuth2Client(OAuth2Config{
		Name:         "oauth2-test",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      server.URL + "/authorize",
		TokenURL:     server.URL + "/token",
		UserInfoURL:  server.URL + "/userinfo",
		RedirectURL:  "https://rp.example.com/callback",
		Scopes:       []string{"profile"},
	}, generator, state.NewValidator(0, testLogger(), nil))
	require.NoError(t, err)
	return client
}

func TestOAuth2LoginURLCarriesState(t *testing.T) {
	server := fakeProvider(t, nil)
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	loginURL, err := client.LoginURL(web)
	require.NoError(t, err)

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "S1", parsed.Query().Get("state"))
	assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
}

func TestOAuth2CallbackHappyPath(t *testing.T) {
	server := fakeProvider(t, map[string]interface{}{
		"id":    "user-42",
		"email": "user@example.com",
	})
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	_, err := client.LoginURL(web)
	require.NoError(t, err)

	p, err := client.Callback(context.Background(), web, url.Values{
		"state": {"S1"},
		"code":  {"good-code"},
	})
	require.NoError(t, err)

	assert.Equal(t, "user-42", p.ID)
	assert.Equal(t, ProfileTypeOAuth2, p.Type)
	assert.Equal(t, "oauth2-test", p.ClientName)

	email, ok := p.Attribute("email")
	require.True(t, ok)
	assert.Equal(t, "user@example.com", email)

	token, ok := p.Attribute("access_token")
	require.True(t, ok)
	assert.Equal(t, "at-123", token)
}

func TestOAuth2CallbackRejectsBadState(t *testing.T) {
	server := fakeProvider(t, nil)
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	_, err := client.LoginURL(web)
	require.NoError(t, err)

	var stateErr *state.InvalidStateError
	_, err = client.Callback(context.Background(), web, url.Values{
		"state": {"forged"},
		"code":  {"good-code"},
	})
	require.ErrorAs(t, err, &stateErr)
}

func TestOAuth2CallbackStateConsumedOnce(t *testing.T) {
	server := fakeProvider(t, map[string]interface{}{"id": "user-42"})
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	_, err := client.LoginURL(web)
	require.NoError(t, err)

	params := url.Values{"state": {"S1"}, "code": {"good-code"}}
	_, err = client.Callback(context.Background(), web, params)
	require.NoError(t, err)

	var stateErr *state.InvalidStateError
	_, err = client.Callback(context.Background(), web, params)
	require.ErrorAs(t, err, &stateErr)
}

func TestOAuth2CallbackMissingIDField(t *testing.T) {
	server := fakeProvider(t, map[string]interface{}{"email": "user@example.com"})
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	_, err := client.LoginURL(web)
	require.NoError(t, err)

	_, err = client.Callback(context.Background(), web, url.Values{
		"state": {"S1"},
		"code":  {"good-code"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "id" field`)
}

func TestOAuth2CallbackNumericID(t *testing.T) {
	server := fakeProvider(t, map[string]interface{}{"id": json.Number("9000")})
	client := newOAuth2TestClient(t, server, state.NewStaticGenerator("S1"))
	web := newTestWebContext(t)

	_, err := client.LoginURL(web)
	require.NoError(t, err)

	p, err := client.Callback(context.Background(), web, url.Values{
		"state": {"S1"},
		"code":  {"good-code"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9000", p.ID)
}

func TestNewOAuth2ClientConfigValidation(t *testing.T) {
	base := OAuth2Config{
		Name:         "oauth2-test",
		ClientID:     "id",
		ClientSecret: "secret",
		AuthURL:      "https://p.example.com/auth",
		TokenURL:     "https://p.example.com/token",
		UserInfoURL:  "https://p.example.com/userinfo",
		RedirectURL:  "https://rp.example.com/callback",
	}

	tests := []struct {
		name   string
		mutate func(*OAuth2Config)
	}{
		{"missing name", func(c *OAuth2Config) { c.Name = "" }},
		{"missing client_id", func(c *OAuth2Config) { c.ClientID = "" }},
		{"missing client_secret", func(c *OAuth2Config) { c.ClientSecret = "" }},
		{"missing auth_url", func(c *OAuth2Config) { c.AuthURL = "" }},
		{"missing token_url", func(c *OAuth2Config) { c.TokenURL = "" }},
		{"missing user_info_url", func(c *OAuth2Config) { c.UserInfoURL = "" }},
		{"missing redirect_url", func(c *OAuth2Config) { c.RedirectURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base
			tt.mutate(&config)
			_, err := NewOAuth2Client(config, nil, nil)
			assert.Error(t, err)
		})
	}
}
