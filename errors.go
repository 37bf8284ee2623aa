package authsession

import (
	"errors"

	"github.com/crmkit/authsession/credstore"
)

var (
	// ErrNoRefreshToken is returned by [Controller.RefreshToken] when no
	// refresh token is held. The remote refresh operation is never invoked
	// in that case.
	ErrNoRefreshToken = errors.New("no refresh token held")
	// ErrRefreshRejected is returned when the remote refresh operation
	// fails or reports a non-success response. The session has already been
	// logged out by the time a caller sees it.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrPartialTokens is the credstore invariant surfaced at this level:
	// a token pair is either fully populated or absent.
	ErrPartialTokens = credstore.ErrPartialTokens
)
