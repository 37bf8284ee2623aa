// Package audit is the server-side append-only trail of authentication
// events: login attempts, password resets, and email verifications.
//
// Entries are immutable once created and keyed by their own generated ID
// plus timestamps, so concurrent request handlers append without any
// cross-request coordination. The package deliberately exposes no read or
// query surface — that is an administrative concern outside this core.
//
// Whether a failed audit write blocks the authentication action it
// accompanies is not one-size-fits-all. [Recorder] makes it explicit
// configuration: [PolicyFailOpen] logs and moves on, [PolicyFailClosed]
// hands the error back to the request handler.
package audit
