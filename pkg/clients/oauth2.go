package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/gatehouse-auth/gatehouse/pkg/profile"
	"github.com/gatehouse-auth/gatehouse/pkg/state"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// ProfileTypeOAuth2 is the profile type produced by OAuth2 clients.
const ProfileTypeOAuth2 = "OAuth2Profile"

// OAuth2Config configures a plain OAuth 2.0 client for providers without
// OIDC discovery.
type OAuth2Config struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string

	// IDField names the userinfo field holding the unique subject.
	// Defaults to "id".
	IDField string
}

// OAuth2Client is an indirect client for plain OAuth 2.0 providers. With no
// ID token there is no nonce; the state round trip is the only one-time
// artifact, and the user is identified from a userinfo endpoint.
type OAuth2Client struct {
	config       OAuth2Config
	oauth2Config *oauth2.Config

	generator state.Generator
	validator *state.Validator
}

// NewOAuth2Client creates an OAuth2 client.
func NewOAuth2Client(config OAuth2Config, generator state.Generator, validator *state.Validator) (*OAuth2Client, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	if config.ClientSecret == "" {
		return nil, fmt.Errorf("client_secret is required")
	}
	if config.AuthURL == "" || config.TokenURL == "" {
		return nil, fmt.Errorf("auth_url and token_url are required")
	}
	if config.UserInfoURL == "" {
		return nil, fmt.Errorf("user_info_url is required")
	}
	if config.RedirectURL == "" {
		return nil, fmt.Errorf("redirect_url is required")
	}
	if config.IDField == "" {
		config.IDField = "id"
	}

	return &OAuth2Client{
		config: config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.AuthURL,
				TokenURL: config.TokenURL,
			},
			RedirectURL: config.RedirectURL,
			Scopes:      config.Scopes,
		},
		generator: generator,
		validator: validator,
	}, nil
}

// Name returns the client name.
func (c *OAuth2Client) Name() string {
	return c.config.Name
}

// Protocol returns ProtocolOAuth2.
func (c *OAuth2Client) Protocol() Protocol {
	return ProtocolOAuth2
}

// Direct reports false; OAuth2 authentication is a redirect round trip.
func (c *OAuth2Client) Direct() bool {
	return false
}

// LoginURL generates and persists the anti-forgery state and returns the
// authorization URL.
func (c *OAuth2Client) LoginURL(web webctx.WebContext) (string, error) {
	token, err := c.generator.Generate(web)
	if err != nil {
		return "", err
	}
	c.validator.Persist(web, token)
	return c.oauth2Config.AuthCodeURL(token, oauth2.AccessTypeOffline), nil
}

// Callback validates and consumes the state, exchanges the code, and
// builds a profile from the userinfo endpoint.
func (c *OAuth2Client) Callback(ctx context.Context, web webctx.WebContext, params url.Values) (*profile.Profile, error) {
	if err := c.validator.Validate(web, params.Get("state")); err != nil {
		return nil, err
	}

	code := params.Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	userInfo, err := c.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	id, _ := userInfo[c.config.IDField].(string)
	if id == "" {
		if n, ok := userInfo[c.config.IDField].(json.Number); ok {
			id = n.String()
		}
	}
	if id == "" {
		return nil, fmt.Errorf("missing %q field in userinfo response", c.config.IDField)
	}

	p := profile.New(ProfileTypeOAuth2, id)
	p.ClientName = c.config.Name
	for k, v := range userInfo {
		p.SetAttribute(k, v)
	}
	p.SetAttribute("access_token", token.AccessToken)

	return p, nil
}

func (c *OAuth2Client) fetchUserInfo(ctx context.Context, token *oauth2.Token) (map[string]interface{}, error) {
	client := c.oauth2Config.Client(ctx, token)

	resp, err := client.Get(c.config.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var userInfo map[string]interface{}
	if err := decoder.Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return userInfo, nil
}
