// Package logout terminates local sessions in response to identity-
// provider-initiated logout notifications.
//
// # State machine
//
// A notification moves through Received -> Resolved -> Terminated, or
// Received -> Rejected when the credentials are not the session-key
// variant. Resolution looks the provider-issued session key up in the
// logout index created at login time; a miss is not an error, since the session
// may already be terminated, and front-channel providers do not process
// processor-side errors, so the handler still acknowledges success.
//
// # Index
//
// The index maps provider session key to local session identifier. It is
// written once at login (TrackSession) and consumed exactly once by the
// processor. Back it with the same store technology as the rest of the
// deployment: memory for a single instance, Redis for a cluster.
package logout
