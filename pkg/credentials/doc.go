// Package credentials defines the credential variants flowing between the
// protocol clients and the security core, and their mandatory lifecycle.
//
// # Lifecycle
//
// A credential is created per authentication attempt, consumed once by the
// profile-creation step, and cleared explicitly by the caller once no longer
// needed. Clear irreversibly empties every secret field (token, password,
// session key, OAuth token/secret) and recursively clears the attached
// profile; a residual secret after Clear is a security defect, not a
// cosmetic bug. Clear is idempotent and a cleared credential never
// re-populates itself.
//
// # Equality
//
// Equality is defined over the constructor-supplied identity data, not
// object identity, so credentials survive store round-trips and test
// assertions.
//
// # Anonymous credentials
//
// There is no package-level shared anonymous instance: construct one with
// NewAnonymous and pass it through configuration, so no state leaks across
// tests or tenants.
package credentials
