package state

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func newTestWebContext(t *testing.T) webctx.WebContext {
	t.Helper()
	return webctx.NewHTTPContext(
		httptest.NewRecorder(),
		httptest.NewRequest("GET", "/callback", nil),
		webctx.NewMemorySessionStore(),
	)
}

func TestStaticGenerator(t *testing.T) {
	g := NewStaticGenerator("S1")
	ctx := newTestWebContext(t)

	for i := 0; i < 3; i++ {
		token, err := g.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "S1", token)
	}
}

func TestRandomGenerator(t *testing.T) {
	ctx := newTestWebContext(t)

	g := NewRandomGenerator(0)
	token, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Len(t, token, DefaultTokenLength)

	g = NewRandomGenerator(32)
	token, err = g.Generate(ctx)
	require.NoError(t, err)
	assert.Len(t, token, 32)

	for _, c := range token {
		assert.True(t, strings.ContainsRune(urlSafeAlphabet, c), "unexpected character %q", c)
	}

	// two draws must differ
	other, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestValidatorRoundTrip(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctx := newTestWebContext(t)

	v.Persist(ctx, "S1")
	require.NoError(t, v.Validate(ctx, "S1"))
}

func TestValidatorConsumesToken(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctx := newTestWebContext(t)

	v.Persist(ctx, "S1")
	require.NoError(t, v.Validate(ctx, "S1"))

	err := v.Validate(ctx, "S1")
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
}

func TestValidatorMismatch(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctx := newTestWebContext(t)

	v.Persist(ctx, "S1")

	err := v.Validate(ctx, "forged")
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "state mismatch", invalid.Reason)

	// a failed validation does not consume the token
	require.NoError(t, v.Validate(ctx, "S1"))
}

func TestValidatorNoPersistedState(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)

	err := v.Validate(newTestWebContext(t), "S1")
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "no persisted state")
}

func TestValidatorExpiry(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctx := newTestWebContext(t)

	// plant an already expired entry
	ctx.SessionStore().Set(ctx, SessionKey, Entry{
		Token:     "S1",
		ExpiresAt: time.Now().Add(-time.Second),
	})

	err := v.Validate(ctx, "S1")
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "expired")

	// the expired entry is cleared; retrying reports absence, not expiry
	err = v.Validate(ctx, "S1")
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "no persisted state")
}

func TestValidatorOverwrite(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctx := newTestWebContext(t)

	v.Persist(ctx, "first")
	v.Persist(ctx, "second")

	var invalid *InvalidStateError
	require.ErrorAs(t, v.Validate(ctx, "first"), &invalid)
	require.NoError(t, v.Validate(ctx, "second"))
}

func TestValidatorSessionIsolation(t *testing.T) {
	v := NewValidator(time.Minute, testLogger(), nil)
	ctxA := newTestWebContext(t)
	ctxB := newTestWebContext(t)

	v.Persist(ctxA, "token-a")

	var invalid *InvalidStateError
	require.ErrorAs(t, v.Validate(ctxB, "token-a"), &invalid)
	require.NoError(t, v.Validate(ctxA, "token-a"))
}

func TestRelayResolverRoundTrip(t *testing.T) {
	r := NewRelayResolver("https://sp.example.org/callback")
	ctx := newTestWebContext(t)

	r.Store(ctx, "https://sp.example.org/dashboard")
	assert.Equal(t, "https://sp.example.org/dashboard", r.Resolve(ctx))

	// consumed on read; the fallback applies afterwards
	assert.Equal(t, "https://sp.example.org/callback", r.Resolve(ctx))
}

func TestRelayResolverFallback(t *testing.T) {
	r := NewRelayResolver("https://sp.example.org/callback")

	// IdP-initiated flow: nothing was ever stored
	assert.Equal(t, "https://sp.example.org/callback", r.Resolve(newTestWebContext(t)))

	// an empty stored value also falls back
	ctx := newTestWebContext(t)
	r.Store(ctx, "")
	assert.Equal(t, "https://sp.example.org/callback", r.Resolve(ctx))
}
