// Package httputil provides HTTP utilities for standardized request/response
// handling across the authentication endpoints.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, data)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteBadRequest(w, "missing SAMLResponse")
//	httputil.WriteUnauthorized(w, "state token mismatch")
//
// # Request Parsing
//
// Path parameters (gorilla/mux routes such as /login/{client}):
//
//	client, ok := httputil.ParsePathStringOrError(w, r, "client")
//
// Query and form parameters:
//
//	ticket := httputil.ParseQueryString(r, "ticket", "")
//	force, err := httputil.ParseQueryBool(r, "force", false)
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// Authentication responses carry credentials and must never be cached;
// wrap those routes with NoStoreMiddleware.
//
// # Related Packages
//
//   - pkg/observability: Logger and request ID context helpers
//   - pkg/webctx: request-scoped session access for the security core
package httputil
