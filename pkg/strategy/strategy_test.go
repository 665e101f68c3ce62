package strategy

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatehouse-auth/gatehouse/pkg/profile"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

func newTestWebContext(t *testing.T) webctx.WebContext {
	t.Helper()
	return webctx.NewHTTPContext(
		httptest.NewRecorder(),
		httptest.NewRequest("GET", "/", nil),
		webctx.NewMemorySessionStore(),
	)
}

func TestAlwaysSession(t *testing.T) {
	ctx := newTestWebContext(t)
	clients := []string{"oidc-corp", "api-token"}
	s := AlwaysSession{}

	assert.True(t, s.MustLoadFromSession(ctx, clients))
	assert.True(t, s.MustSaveToSession(ctx, clients, false, profile.New("OidcProfile", "alice")))
	// even direct-client profiles are kept
	assert.True(t, s.MustSaveToSession(ctx, clients, true, profile.New("OidcProfile", "alice")))
}

func TestNeverSession(t *testing.T) {
	ctx := newTestWebContext(t)
	clients := []string{"api-token"}
	s := NeverSession{}

	assert.False(t, s.MustLoadFromSession(ctx, clients))
	assert.False(t, s.MustSaveToSession(ctx, clients, false, profile.New("OidcProfile", "alice")))
}

func TestFunc(t *testing.T) {
	ctx := newTestWebContext(t)

	// save indirect-client profiles only
	s := Func{
		Load: func(webctx.WebContext, []string) bool { return true },
		Save: func(_ webctx.WebContext, _ []string, directClient bool, _ *profile.Profile) bool {
			return !directClient
		},
	}

	assert.True(t, s.MustLoadFromSession(ctx, nil))
	assert.True(t, s.MustSaveToSession(ctx, nil, false, nil))
	assert.False(t, s.MustSaveToSession(ctx, nil, true, nil))
}

func TestFuncNilFields(t *testing.T) {
	ctx := newTestWebContext(t)
	s := Func{}

	assert.False(t, s.MustLoadFromSession(ctx, nil))
	assert.False(t, s.MustSaveToSession(ctx, nil, false, nil))
}
