// Package credstore persists the current session's tokens and cached user
// profile in client-local durable storage.
//
// The raw storage contract is [KV], a getItem/setItem/removeItem surface with
// string values, matching the key-value stores client runtimes actually
// provide. [Store] is the typed layer on top: it owns the two fixed keys,
// the JSON encoding, and the invariant that a token pair is either fully
// present or absent.
//
// Every operation returns an error instead of swallowing storage failures.
// Whether a failed read degrades to "not logged in" or aborts the caller is
// a session-lifecycle policy decision, and it belongs to the caller, not to
// this package.
package credstore
