// Package store provides the key/value store used for short-lived
// provider-issued secrets.
//
// # Overview
//
// Identity providers sometimes deliver a secret out of band: CAS issues a
// proxy-granting ticket on a callback URL it invokes itself, keyed by an IOU
// identifier returned on the original validation response. This package is
// the bridge between those two calls: Put on the callback, Get (or GetWait,
// with a mandatory timeout) on the validation path.
//
// # Backends
//
// MemoryStore is an in-process expiring store for single-instance
// deployments. RedisStore shares entries across instances and is required
// whenever more than one server can receive the provider callback.
//
// Eviction is the backend's concern, not the caller's: both built-in
// backends evict by TTL, and CleanUp is an explicit hook (a no-op for both)
// for backends that need a sweep. Reaper runs CleanUp on a cron schedule
// for such backends.
//
// # Related Packages
//
//   - pkg/cas: proxy-granting-ticket bridge built on this store
//   - pkg/logout: logout session index built on this store
//   - pkg/replay: anti-replay cache with a similar backend split
package store
