// Package authsession manages the client-side authentication session
// lifecycle of a CRM application: bearer-token expiry tracking, pre-emptive
// refresh with rotation, durable credential caching, and unconditional local
// cleanup on logout. The sibling audit package covers the server half — the
// append-only trail of authentication events.
//
// The [Controller] owns exactly one session per client process. It is built
// through [Builder.Build] and is safe to call from multiple goroutines after
// construction.
//
// # Architecture boundaries
//
// authsession is the public surface. Token claim decoding lives in the token
// package, durable storage in credstore, and the audit trail in audit. The
// network transport, the UI, and the issuing server are collaborators behind
// the [Transport] and [Notifier] interfaces: this package never opens a
// socket and never verifies a signature.
//
// # Failure policy
//
// Refresh failure is fatal to the session. The controller forces a logout
// and surfaces the error, so the UI can never keep presenting a session that
// the server has rejected. Logout failure is the opposite: the remote call
// is advisory, local cleanup always runs, and the user always sees a clean
// sign-out.
package authsession
