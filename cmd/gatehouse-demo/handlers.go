package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gatehouse-auth/gatehouse/pkg/clients"
	"github.com/gatehouse-auth/gatehouse/pkg/httputil"
	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/profile"
	"github.com/gatehouse-auth/gatehouse/pkg/webctx"
)

// profileSessionKey is where the authenticated profile lives in the session.
const profileSessionKey = "gatehouse.profile"

func (a *app) routes() http.Handler {
	router := mux.NewRouter()

	router.Use(httputil.RequestIDMiddleware)
	router.Use(httputil.LoggingMiddleware(a.logger))
	router.Use(httputil.RecoveryMiddleware(a.logger))
	if a.metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(a.metrics))
	}
	if a.otelMetrics != nil {
		router.Use(a.otelHTTPMiddleware)
	}

	// Authentication responses carry one-time artifacts; never cacheable.
	auth := router.NewRoute().Subrouter()
	auth.Use(httputil.NoStoreMiddleware)
	auth.HandleFunc("/login/{client}", a.handleLogin).Methods("GET")
	auth.HandleFunc("/callback/saml/{client}", a.handleSAMLCallback).Methods("POST")
	auth.HandleFunc("/callback/{client}", a.handleCallback).Methods("GET")
	auth.HandleFunc("/logout/backchannel", a.handleBackChannelLogout).Methods("POST")

	router.HandleFunc("/metadata/{client}", a.handleMetadata).Methods("GET")
	router.HandleFunc("/cas/callback", a.tickets.CallbackHandler()).Methods("GET")
	router.HandleFunc("/profile", a.handleProfile).Methods("GET")

	return router
}

func (a *app) lookupClient(w http.ResponseWriter, r *http.Request) (clients.Client, bool) {
	name, ok := httputil.ParsePathStringOrError(w, r, "client")
	if !ok {
		return nil, false
	}
	client, ok := a.clients.Get(name)
	if !ok {
		httputil.WriteNotFoundError(w, "unknown client: "+name)
		return nil, false
	}
	return client, true
}

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	client, ok := a.lookupClient(w, r)
	if !ok {
		return
	}
	web := webctx.NewHTTPContext(w, r, a.sessions)

	var location string
	var err error
	switch c := client.(type) {
	case *clients.OIDCClient:
		location, err = c.LoginURL(web)
	case *clients.OAuth2Client:
		location, err = c.LoginURL(web)
	case *clients.SAMLClient:
		location, err = c.LoginURL(web, httputil.ParseQueryString(r, "returnTo", ""))
	default:
		httputil.WriteBadRequest(w, "client does not support interactive login")
		return
	}
	if err != nil {
		a.logger.WithError(err).WithField("client", client.Name()).Error("failed to build login URL")
		httputil.WriteInternalError(w, err)
		return
	}

	webctx.Redirect(location).WriteTo(w)
}

func (a *app) handleCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := a.lookupClient(w, r)
	if !ok {
		return
	}
	web := webctx.NewHTTPContext(w, r, a.sessions)
	ctx := observability.WithClientName(r.Context(), client.Name())

	var p *profile.Profile
	var err error
	switch c := client.(type) {
	case *clients.OIDCClient:
		p, err = c.Callback(ctx, web, r.URL.Query())
	case *clients.OAuth2Client:
		p, err = c.Callback(ctx, web, r.URL.Query())
	default:
		httputil.WriteBadRequest(w, "client does not use this callback")
		return
	}
	if err != nil {
		a.recordAuthentication(ctx, client, err)
		observability.FromContext(ctx).WithError(err).Warn("authentication failed")
		httputil.WriteUnauthorized(w, "authentication failed")
		return
	}

	a.recordAuthentication(ctx, client, nil)
	a.saveProfile(web, client, p)
	httputil.WriteSuccess(w, map[string]string{"profile": p.TypedID()})
}

func (a *app) handleSAMLCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := a.lookupClient(w, r)
	if !ok {
		return
	}
	samlClient, ok := client.(*clients.SAMLClient)
	if !ok {
		httputil.WriteBadRequest(w, "client does not accept SAML responses")
		return
	}

	encoded, err := httputil.FormValue(r, "SAMLResponse")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	web := webctx.NewHTTPContext(w, r, a.sessions)
	ctx := observability.WithClientName(r.Context(), client.Name())
	p, returnURL, err := samlClient.Callback(ctx, web, encoded)
	if err != nil {
		a.recordAuthentication(ctx, client, err)
		observability.FromContext(ctx).WithError(err).Warn("SAML authentication failed")
		httputil.WriteUnauthorized(w, "authentication failed")
		return
	}

	a.recordAuthentication(ctx, client, nil)
	a.saveProfile(web, client, p)
	webctx.Redirect(returnURL).WriteTo(w)
}

func (a *app) handleMetadata(w http.ResponseWriter, r *http.Request) {
	client, ok := a.lookupClient(w, r)
	if !ok {
		return
	}
	samlClient, ok := client.(*clients.SAMLClient)
	if !ok {
		httputil.WriteNotFoundError(w, "client has no metadata")
		return
	}

	doc, err := samlClient.Metadata()
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/samlmetadata+xml")
	w.Write(doc)
}

// handleBackChannelLogout receives the IdP's LogoutRequest and terminates
// the session it tracked at login time.
func (a *app) handleBackChannelLogout(w http.ResponseWriter, r *http.Request) {
	encoded, err := httputil.FormValue(r, "LogoutRequest")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	creds, err := a.extractor.Extract(encoded)
	if err != nil {
		a.logger.WithError(err).Warn("rejected logout request")
		httputil.WriteBadRequest(w, "invalid logout request")
		return
	}

	web := webctx.NewHTTPContext(w, r, a.sessions)
	action, err := a.processor.ProcessLogout(r.Context(), web, creds)
	if err != nil {
		a.logger.WithError(err).Error("logout processing failed")
		httputil.WriteInternalError(w, err)
		return
	}
	action.WriteTo(w)
}

func (a *app) handleProfile(w http.ResponseWriter, r *http.Request) {
	web := webctx.NewHTTPContext(w, r, a.sessions)

	if !a.strat.MustLoadFromSession(web, a.clients.Names()) {
		httputil.WriteUnauthorized(w, "stateless mode: no session profiles")
		return
	}

	raw, ok := a.sessions.Get(web, profileSessionKey)
	if !ok {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}
	p, ok := raw.(*profile.Profile)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "corrupt session profile")
		return
	}

	httputil.WriteSuccess(w, p)
}

func (a *app) saveProfile(web webctx.WebContext, client clients.Client, p *profile.Profile) {
	if !a.strat.MustSaveToSession(web, a.clients.Names(), client.Direct(), p) {
		return
	}
	a.sessions.Set(web, profileSessionKey, p)
	if a.metrics != nil {
		a.metrics.ProfilesSavedTotal.WithLabelValues(client.Name()).Inc()
	}
}

func (a *app) recordAuthentication(ctx context.Context, client clients.Client, err error) {
	if a.otelMetrics != nil {
		a.otelMetrics.RecordAuthentication(ctx, client.Name(), string(client.Protocol()), err)
	}
	if a.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	a.metrics.AuthenticationsTotal.WithLabelValues(client.Name(), string(client.Protocol()), result).Inc()
}

// otelHTTPMiddleware mirrors request counts and latencies to OpenTelemetry
// when an OTLP endpoint is configured.
func (a *app) otelHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		a.otelMetrics.RecordHTTPRequest(r.Context(), r.Method, route, recorder.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
