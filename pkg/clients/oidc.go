package clients

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/gatehouse-auth/gatehouse/pkg/logout"
	"github.com/gatehouse-auth/gatehouse/pkg/profile"
	"github.com/gatehouse-auth/gatehouse/pkg/replay"
	"github.com/gatehouse-auth/gatehouse/pkg/state"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// NonceSessionKey is the session key the pending OIDC nonce lives under.
const NonceSessionKey = "gatehouse.oidc.nonce"

// DefaultNonceTTL bounds how long a consumed nonce stays in the replay
// guard. Matches the longest ID token lifetime seen from mainstream
// providers.
const DefaultNonceTTL = time.Hour

// ProfileTypeOIDC is the profile type produced by OIDC clients.
const ProfileTypeOIDC = "OidcProfile"

// OIDCConfig configures an OIDC client.
type OIDCConfig struct {
	Name         string
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// RolesClaim names the claim holding role values, e.g. "groups".
	// Empty disables role mapping.
	RolesClaim string

	// NonceTTL overrides DefaultNonceTTL.
	NonceTTL time.Duration
}

// OIDCClient is an indirect client for OpenID Connect providers. It runs
// discovery once at construction, then drives the authorization code flow
// with the state round trip and nonce replay checking.
type OIDCClient struct {
	config       OIDCConfig
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config

	generator state.Generator
	validator *state.Validator
	checker   *replay.Checker
	tracker   *logout.Processor
}

// NewOIDCClient creates an OIDC client, discovering the provider's
// endpoints from its issuer URL. The tracker may be nil when back-channel
// logout is not used.
func NewOIDCClient(ctx context.Context, config OIDCConfig, generator state.Generator, validator *state.Validator, checker *replay.Checker, tracker *logout.Processor) (*OIDCClient, error) {
	if err := validateOIDCConfig(config); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, config.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.ClientID,
	})

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  config.RedirectURL,
		Scopes:       config.Scopes,
	}

	if config.NonceTTL <= 0 {
		config.NonceTTL = DefaultNonceTTL
	}

	return &OIDCClient{
		config:       config,
		verifier:     verifier,
		oauth2Config: oauth2Config,
		generator:    generator,
		validator:    validator,
		checker:      checker,
		tracker:      tracker,
	}, nil
}

func validateOIDCConfig(config OIDCConfig) error {
	if config.Name == "" {
		return fmt.Errorf("client name is required")
	}
	if config.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if config.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}
	if config.IssuerURL == "" {
		return fmt.Errorf("issuer_url is required")
	}
	if config.RedirectURL == "" {
		return fmt.Errorf("redirect_url is required")
	}
	hasOpenID := false
	for _, scope := range config.Scopes {
		if scope == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("'openid' scope is required for OIDC")
	}
	return nil
}

// Name returns the client name.
func (c *OIDCClient) Name() string {
	return c.config.Name
}

// Protocol returns ProtocolOIDC.
func (c *OIDCClient) Protocol() Protocol {
	return ProtocolOIDC
}

// Direct reports false; OIDC authentication is a redirect round trip.
func (c *OIDCClient) Direct() bool {
	return false
}

// LoginURL starts an authentication round: it generates and persists the
// anti-forgery state, draws a fresh nonce, and returns the authorization
// URL to redirect the user agent to.
func (c *OIDCClient) LoginURL(web webctx.WebContext) (string, error) {
	token, err := c.generator.Generate(web)
	if err != nil {
		return "", err
	}
	c.validator.Persist(web, token)

	nonce := uuid.New().String()
	web.SessionStore().Set(web, NonceSessionKey, nonce)

	return c.oauth2Config.AuthCodeURL(token,
		oauth2.AccessTypeOffline,
		oidc.Nonce(nonce),
	), nil
}

// Callback finishes an authentication round. The presented state is
// validated and consumed first; only then is the code exchanged and the ID
// token verified. The nonce is checked against the session and run through
// the replay guard, so an ID token presented twice fails the second time
// even when the session nonce was already cleared.
func (c *OIDCClient) Callback(ctx context.Context, web webctx.WebContext, params url.Values) (*profile.Profile, error) {
	if err := c.validator.Validate(web, params.Get("state")); err != nil {
		return nil, err
	}

	code := params.Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	oauth2Token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("missing id_token in response")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	if err := c.checkNonce(ctx, web, idToken.Nonce); err != nil {
		return nil, err
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	p := profile.New(ProfileTypeOIDC, idToken.Subject)
	p.ClientName = c.config.Name
	for k, v := range claims {
		p.SetAttribute(k, v)
	}
	p.SetAttribute("access_token", oauth2Token.AccessToken)

	if c.config.RolesClaim != "" {
		for _, role := range stringSlice(claims[c.config.RolesClaim]) {
			p.AddRole(role)
		}
	}

	if c.tracker != nil {
		if sid, ok := claims["sid"].(string); ok && sid != "" {
			if localID, exists := web.SessionStore().SessionID(web, true); exists {
				if err := c.tracker.TrackSession(ctx, sid, localID); err != nil {
					return nil, err
				}
			}
		}
	}

	return p, nil
}

// checkNonce ties the ID token to the login round that requested it. The
// session copy is cleared on first use; the replay guard then rejects any
// later presentation of the same nonce, including from another session.
func (c *OIDCClient) checkNonce(ctx context.Context, web webctx.WebContext, nonce string) error {
	if nonce == "" {
		return fmt.Errorf("missing nonce in ID token")
	}

	session := web.SessionStore()
	stored, _ := session.Get(web, NonceSessionKey)
	session.Set(web, NonceSessionKey, nil)

	if expected, ok := stored.(string); !ok || expected != nonce {
		return fmt.Errorf("nonce does not match the pending login")
	}

	return c.checker.Check(ctx, nonce, c.config.NonceTTL)
}

// stringSlice coerces a claim value into a string slice; scalar strings
// become a single-element slice.
func stringSlice(value interface{}) []string {
	switch v := value.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
