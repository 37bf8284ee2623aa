// Package token decodes the claims segment of a dot-delimited bearer token to
// answer one question: when does this credential expire.
//
// Nothing here verifies signatures. The issuing server owns key custody and
// cryptographic validation; a client deciding whether to refresh only needs
// the exp claim, and it needs that decision to be cheap and infallible.
// Every parse failure therefore degrades to a documented negative result
// (invalid / unknown / refresh-now) instead of an error.
package token
