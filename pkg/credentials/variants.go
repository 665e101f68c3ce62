package credentials

// TokenCredentials carries a bearer or ticket token extracted from the
// request or returned by a provider.
type TokenCredentials struct {
	base
	token string
}

// NewToken creates token credentials.
func NewToken(token string) *TokenCredentials {
	return &TokenCredentials{token: token}
}

// Token returns the token, or "" after Clear.
func (c *TokenCredentials) Token() string {
	return c.token
}

// Clear empties the token and the attached profile.
func (c *TokenCredentials) Clear() {
	c.token = ""
	c.clearProfile()
}

// Equal compares over the constructor-supplied token.
func (c *TokenCredentials) Equal(other *TokenCredentials) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.token == other.token
}

// UsernamePasswordCredentials carries a form or basic-auth credential pair.
type UsernamePasswordCredentials struct {
	base
	username string
	password string
}

// NewUsernamePassword creates username/password credentials.
func NewUsernamePassword(username, password string) *UsernamePasswordCredentials {
	return &UsernamePasswordCredentials{username: username, password: password}
}

// Username returns the username. Not a secret; survives Clear.
func (c *UsernamePasswordCredentials) Username() string {
	return c.username
}

// Password returns the password, or "" after Clear.
func (c *UsernamePasswordCredentials) Password() string {
	return c.password
}

// Clear empties the password and the attached profile.
func (c *UsernamePasswordCredentials) Clear() {
	c.password = ""
	c.clearProfile()
}

// Equal compares over the constructor-supplied username and password.
func (c *UsernamePasswordCredentials) Equal(other *UsernamePasswordCredentials) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.username == other.username && c.password == other.password
}

// SessionKeyCredentials carries the provider-issued session key from a
// logout notification. The logout processor accepts only this variant.
type SessionKeyCredentials struct {
	base
	sessionKey string
}

// NewSessionKey creates session-key credentials.
func NewSessionKey(sessionKey string) *SessionKeyCredentials {
	return &SessionKeyCredentials{sessionKey: sessionKey}
}

// SessionKey returns the provider-issued session key, or "" after Clear.
func (c *SessionKeyCredentials) SessionKey() string {
	return c.sessionKey
}

// Clear empties the session key and the attached profile.
func (c *SessionKeyCredentials) Clear() {
	c.sessionKey = ""
	c.clearProfile()
}

// Equal compares over the constructor-supplied session key.
func (c *SessionKeyCredentials) Equal(other *SessionKeyCredentials) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.sessionKey == other.sessionKey
}

// OAuthCredentials carries a provider-specific access token/secret pair.
type OAuthCredentials struct {
	base
	accessToken string
	tokenSecret string
}

// NewOAuth creates OAuth credentials.
func NewOAuth(accessToken, tokenSecret string) *OAuthCredentials {
	return &OAuthCredentials{accessToken: accessToken, tokenSecret: tokenSecret}
}

// AccessToken returns the access token, or "" after Clear.
func (c *OAuthCredentials) AccessToken() string {
	return c.accessToken
}

// TokenSecret returns the token secret, or "" after Clear.
func (c *OAuthCredentials) TokenSecret() string {
	return c.tokenSecret
}

// Clear empties both secrets and the attached profile.
func (c *OAuthCredentials) Clear() {
	c.accessToken = ""
	c.tokenSecret = ""
	c.clearProfile()
}

// Equal compares over the constructor-supplied token pair.
func (c *OAuthCredentials) Equal(other *OAuthCredentials) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.accessToken == other.accessToken && c.tokenSecret == other.tokenSecret
}

// AnonymousCredentials represents the absence of authentication. Construct
// one per process through NewAnonymous and pass it where needed; there is
// deliberately no shared package-level instance.
type AnonymousCredentials struct {
	base
}

// NewAnonymous creates anonymous credentials.
func NewAnonymous() *AnonymousCredentials {
	return &AnonymousCredentials{}
}

// Clear detaches the profile; there are no secret fields.
func (c *AnonymousCredentials) Clear() {
	c.clearProfile()
}

// Equal: any two anonymous credentials are equal.
func (c *AnonymousCredentials) Equal(other *AnonymousCredentials) bool {
	return c != nil && other != nil
}
